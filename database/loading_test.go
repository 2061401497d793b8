package database

import (
	"context"
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/protocol"
)

func TestReportLoadingStatusBucketsByPhase(t *testing.T) {
	db := New()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	db.PushFetch(&fetch.File{Root: dir})
	db.RegisterProtocol(protocol.Text{})

	// Scheduled but never maintained: stays AwaitingResolution.
	db.Schedule(assetpath.New("text://missing-until-maintain.txt"))

	if _, err := db.Ensure(assetpath.New("text://a.txt")); err != nil {
		t.Fatal(err)
	}

	status := db.ReportLoadingStatus()
	if len(status.AwaitingResolution) != 1 {
		t.Fatalf("expected 1 awaiting-resolution asset, got %d", len(status.AwaitingResolution))
	}
	if len(status.ReadyToUse) != 1 {
		t.Fatalf("expected 1 ready-to-use asset, got %d", len(status.ReadyToUse))
	}
	if status.ReadyToUse[0].Path() != "a.txt" {
		t.Fatalf("expected ready-to-use path %q, got %q", "a.txt", status.ReadyToUse[0].Path())
	}
}

func TestTraverseStreamsDependencyClosure(t *testing.T) {
	db := New()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.txt", "beta")
	writeFile(t, dir, "members.group", "text://a.txt\ntext://b.txt\n")

	db.PushFetch(&fetch.File{Root: dir})
	db.RegisterProtocol(protocol.Text{})
	db.RegisterProtocol(protocol.Group{})

	h, err := db.Ensure(assetpath.New("group://members.group"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10 && !h.IsReadyToUse(); i++ {
		if err := db.Maintain(); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cur := db.Traverse(ctx, h.Entity)
	defer cur.Stop()

	count := 0
	for range cur.Results() {
		count++
	}
	if count != 3 {
		t.Fatalf("expected group entity plus 2 members = 3 results, got %d", count)
	}
}
