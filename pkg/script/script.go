// Package script はプログラムのソースを読み込み、UTF-8 に変換する
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zurustar/ruscal/pkg/fileutil"
)

// DefaultEncoding はエンコーディング未指定時に使う名前
const DefaultEncoding = "utf-8"

// StdinName は標準入力から読み込んだスクリプトの名前
const StdinName = "<stdin>"

// Script は読み込んだプログラムを表す
type Script struct {
	Name    string // ファイル名（標準入力の場合は "<stdin>"）
	Content string // UTF-8に変換された内容
	Size    int64  // 変換前のバイト数
}

// Loader はスクリプトの読み込みを行う
type Loader struct {
	encoding string
}

// NewLoader Loaderを作成。encoding が空なら UTF-8
func NewLoader(encoding string) *Loader {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Loader{
		encoding: encoding,
	}
}

// Encoding は Loader が使うエンコーディング名を返す
func (l *Loader) Encoding() string {
	return l.encoding
}

// LoadFile ファイルを読み込む。path が "-" の場合は標準入力
func (l *Loader) LoadFile(path string) (*Script, error) {
	if path == "-" {
		return l.LoadReader(StdinName, os.Stdin)
	}

	// 大文字小文字だけが異なるファイル名も受け付ける
	resolved, err := fileutil.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.load(filepath.Base(resolved), data)
}

// LoadReader r を最後まで読み込む
func (l *Loader) LoadReader(name string, r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return l.load(name, data)
}

func (l *Loader) load(name string, data []byte) (*Script, error) {
	content, err := Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding of %s: %w", name, err)
	}

	return &Script{
		Name:    name,
		Content: content,
		Size:    int64(len(data)),
	}, nil
}

// LookupEncoding エンコーディング名を解決する。
// UTF-8 は BOM を取り除く。Shift_JIS 以外の名前は WHATWG のラベルとして扱う
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// Decode data を UTF-8 の文字列に変換する
func Decode(data []byte, name string) (string, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return "", err
	}

	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return string(utf8Data), nil
}
