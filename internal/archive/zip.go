package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// ZipOpener 以文件路径作为归档标识打开 zip 文件。
type ZipOpener struct{}

// Open implements Opener.
func (ZipOpener) Open(id string) (Archive, error) {
	rc, err := zip.OpenReader(id)
	if err != nil {
		return nil, err
	}
	return newZipArchive(&rc.Reader, rc), nil
}

// NewZipArchive 包装一个已存在的 zip.Reader，例如内存中的归档。
func NewZipArchive(r io.ReaderAt, size int64) (Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return newZipArchive(zr, nil), nil
}

type zipArchive struct {
	files  map[string]*zip.File
	closer io.Closer
}

func newZipArchive(zr *zip.Reader, closer io.Closer) *zipArchive {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		// 重复成员以第一次出现为准。
		if _, dup := files[f.Name]; !dup {
			files[f.Name] = f
		}
	}
	return &zipArchive{files: files, closer: closer}
}

func (z *zipArchive) Read(name string) ([]byte, error) {
	f, ok := z.files[name]
	if !ok || f.FileInfo().IsDir() {
		return nil, ErrMemberNotFound
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read member %s: %w", name, err)
	}
	return data, nil
}

func (z *zipArchive) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}
