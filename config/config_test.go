package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsEmptyBuntDBPath(t *testing.T) {
	c := Default()
	c.Store.BuntDBPath = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected empty buntdb_path to fail validation")
	}
}

func TestValidateRejectsNegativeThrottleRPS(t *testing.T) {
	c := Default()
	c.Fetch.ThrottleRPS = -1
	if err := c.Validate(); err == nil {
		t.Fatal("expected negative throttle_rps to fail validation")
	}
}
