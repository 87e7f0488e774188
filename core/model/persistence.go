package model

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// Format はModelWeightsの保存形式
type Format int

const (
	// FormatJSON はJSON形式
	FormatJSON Format = iota
	// FormatYAML はYAML形式
	FormatYAML
)

// FormatFromPath は拡張子から形式を判定する（.yaml/.yml 以外はJSON）
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// SaveWeights はModelWeightsをファイルに保存する
//
// 使用例:
//
//	mw := model.Snapshot("linear", []int{3}, net)
//	err := model.SaveWeights(mw, "linear.yaml")
func SaveWeights(mw *ModelWeights, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return SaveWeightsToWriter(mw, file, FormatFromPath(filename))
}

// LoadWeights はファイルからModelWeightsを読み込み、検証する
func LoadWeights(filename string) (*ModelWeights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadWeightsFromReader(file, FormatFromPath(filename))
}

// SaveWeightsToWriter はModelWeightsをio.Writerに保存する
func SaveWeightsToWriter(mw *ModelWeights, w io.Writer, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = mw.ToYAML()
	default:
		data, err = mw.ToJSON()
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode weights")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write weights")
	}
	return nil
}

// LoadWeightsFromReader はio.ReaderからModelWeightsを読み込み、検証する
func LoadWeightsFromReader(r io.Reader, format Format) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read weights")
	}

	mw := &ModelWeights{}
	switch format {
	case FormatYAML:
		err = mw.FromYAML(data)
	default:
		err = mw.FromJSON(data)
	}
	if err != nil {
		return nil, err
	}
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	return mw, nil
}
