package store

import (
	"github.com/tidwall/buntdb"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/keketerr"
)

// assetsCollection is the single BuntDB key prefix asset bytes are
// stored under, adapted from dbdriver/bunt.go's collection/key scheme
// (there, one collection per caller-chosen namespace; here, one fixed
// collection since every key is already a canonical AssetPath string).
const assetsCollection = "keket-assets##"

const buntAutoShrinkSize = 1 << 20 // 1MiB, matching dbdriver/bunt.go's autoShrinkSize

// BuntDB persists asset bytes keyed by canonical AssetPath string in a
// github.com/tidwall/buntdb database, with the same SyncPolicy/
// AutoShrink tuning dbdriver/bunt.go uses for the object-storage local
// metadata DB.
type BuntDB struct {
	db *buntdb.DB
}

func NewBuntDB(path string) (*BuntDB, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "buntdb open %q: %v", path, err)
	}
	if err := db.SetConfig(buntdb.Config{
		SyncPolicy:           buntdb.EverySecond,
		AutoShrinkMinSize:    buntAutoShrinkSize,
		AutoShrinkPercentage: 50,
	}); err != nil {
		db.Close()
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "buntdb config %q: %v", path, err)
	}
	return &BuntDB{db: db}, nil
}

func (b *BuntDB) key(path assetpath.AssetPath) string {
	return assetsCollection + path.String()
}

func (b *BuntDB) SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error) {
	key := b.key(path)
	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(data), nil)
		return err
	})
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "buntdb set %q: %v", key, err)
	}
	return Bundle{Into{FullPath: key}}, nil
}

// Load reads back bytes previously saved under path, for round-trip
// scenarios: spawn, store, delete, then re-ensure — the reloaded value
// must equal what was originally saved.
func (b *BuntDB) Load(path assetpath.AssetPath) ([]byte, error) {
	key := b.key(path)
	var value string
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		value, err = tx.Get(key)
		return err
	})
	if err == buntdb.ErrNotFound {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "buntdb get %q: not found", key)
	}
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "buntdb get %q: %v", key, err)
	}
	return []byte(value), nil
}

func (b *BuntDB) Close() error { return b.db.Close() }
