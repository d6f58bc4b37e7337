/*
Package contracts provides access to compiled DegenToken contract artifacts.

Artifacts are produced by neo-go compiler next to contract sources (see
Makefile) and consist of NEF file and JSON manifest.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	// DegenDir is a directory of DegenToken contract relative to the
	// contracts root.
	DegenDir = "degen"

	// DegenName is a name of DegenToken contract in its manifest.
	DegenName = "DegenToken"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about compiled Neo contract.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	// ErrInvalidNEF is returned when NEF file can't be decoded.
	ErrInvalidNEF = errors.New("invalid NEF")
	// ErrInvalidManifest is returned when manifest can't be decoded.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrUnexpectedContract is returned when artifacts belong to some other
	// contract.
	ErrUnexpectedContract = errors.New("unexpected contract")
)

// ReadDegen reads DegenToken artifacts from the contracts root, e.g.
// os.DirFS("contracts").
func ReadDegen(root fs.FS) (Contract, error) {
	c, err := Read(root, DegenDir)
	if err != nil {
		return c, err
	}

	if c.Manifest.Name != DegenName {
		return c, fmt.Errorf("%w: manifest name %q", ErrUnexpectedContract, c.Manifest.Name)
	}

	return c, nil
}

// ReadDir reads contract artifacts located directly in the given OS
// directory.
func ReadDir(dir string) (Contract, error) {
	return Read(os.DirFS(dir), ".")
}

// Read reads contract artifacts from the dir of the given file system.
func Read(_fs fs.FS, dir string) (Contract, error) {
	c, err := readContractFromDir(_fs, dir)
	if err != nil {
		return c, fmt.Errorf("read contract %s: %w", dir, err)
	}

	return c, nil
}

func readContractFromDir(_fs fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS always uses "/", so filepath.Join() is not applicable.
	fNEF, err := _fs.Open(path.Join(dir, nefName))
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := _fs.Open(path.Join(dir, manifestName))
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	return c, nil
}
