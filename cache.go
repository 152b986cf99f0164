package main

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// tableCache stores parsed tables as gob files so a rerun on the
// same inputs can skip parsing. A zero tableCache is disabled.
type tableCache struct {
	dir string
}

// cacheKey identifies a table built from the given input files by
// their path, size and modification time.
func cacheKey(kind string, paths ...string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(h, "%s\n", kind)
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\t%d\t%d\n", abs, fi.Size(), fi.ModTime().UnixNano())
	}
	return fmt.Sprintf("%s-%x", kind, h.Sum(nil)), nil
}

func (tc *tableCache) path(key string) string {
	return filepath.Join(tc.dir, key+".gob")
}

// Load decodes the cached table for key into v. It reports false if
// the cache is disabled, has no entry, or the entry is unreadable.
func (tc *tableCache) Load(key string, v interface{}) (bool, error) {
	if tc.dir == "" {
		return false, nil
	}
	f, err := os.Open(tc.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer f.Close()
	err = gob.NewDecoder(bufio.NewReader(f)).Decode(v)
	if err != nil {
		log.Warnf("%s: ignoring unreadable cache entry: %s", f.Name(), err)
		return false, nil
	}
	log.Printf("%s: loaded from cache", f.Name())
	return true, nil
}

// Store writes v as the cache entry for key. The entry is written to
// a temp file and renamed into place.
func (tc *tableCache) Store(key string, v interface{}) error {
	if tc.dir == "" {
		return nil
	}
	f, err := ioutil.TempFile(tc.dir, key+".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()
	bufw := bufio.NewWriter(f)
	err = gob.NewEncoder(bufw).Encode(v)
	if err != nil {
		return err
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), tc.path(key))
}
