package protocol

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// Members is the payload Group attaches: the list of paths declared by
// the group's manifest, in file order.
type Members struct {
	Paths []assetpath.AssetPath
}

// Group interprets the fetched bytes as a newline-delimited list of
// paths, ignoring blank lines and lines starting with '#' or ';',
// declaring each remaining line a dependency.
type Group struct{}

func (Group) Name() string { return "group" }

func (Group) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	var members Members
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		path := assetpath.New(line)
		members.Paths = append(members.Paths, path)
		depEntity, _ := components.EnsureEntityForPath(s, path)
		s.Relate(h.Entity, depEntity)
	}
	s.Attach(h.Entity, members)
	return scanner.Err()
}
