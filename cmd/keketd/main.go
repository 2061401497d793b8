// Package main is keketd, a minimal embedding example exercising
// database.Database end to end. It takes no subcommands and performs
// no asset-engine operation selection; it wires up a database, walks
// it through a handful of maintain ticks, and reports loading status.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/keket-go/keket/config"
	"github.com/keket-go/keket/database"
	"github.com/keket-go/keket/events"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/protocol"
	"github.com/keket-go/keket/store"
)

var root = flag.String("root", ".", "directory fetch.File/store.File resolve asset paths against")

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	cfg.Fetch.FileRoot = *root
	cfg.Store.FileRoot = *root
	if err := cfg.Validate(); err != nil {
		glog.Errorf("keketd: invalid config: %v", err)
		return 1
	}

	db := database.New()
	db.PushFetch(&fetch.File{Root: cfg.Fetch.FileRoot})
	db.PushStore(&store.File{Root: cfg.Store.FileRoot})
	db.RegisterProtocol(protocol.Text{})
	db.RegisterProtocol(protocol.Bytes{})
	db.RegisterProtocol(protocol.Group{})
	db.Bind(events.ListenerFunc(func(ev events.Event) error {
		glog.V(2).Infof("keketd: %s %s", ev.Kind, ev.Path)
		return nil
	}))

	glog.Infof("keketd: smoke-testing database wiring against %q", cfg.Fetch.FileRoot)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; i < 5; i++ {
		if err := db.Maintain(); err != nil {
			glog.Errorf("keketd: maintain: %v", err)
			return 1
		}
		<-ticker.C
	}

	status := db.ReportLoadingStatus()
	glog.Infof("keketd: %d ready-to-use, %d awaiting resolution", len(status.ReadyToUse), len(status.AwaitingResolution))
	return 0
}
