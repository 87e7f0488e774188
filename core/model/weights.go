package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// WeightsFormatVersion はModelWeightsの形式バージョン
const WeightsFormatVersion = "1.0"

// ModelWeights はモデルの型・形状・フラットなパラメータ列をまとめた構造体（シリアライゼーション用）
//
// パラメータの並びは各モデルの SetParameters が受け付ける順序そのもの。
type ModelWeights struct {
	// TypeID はレジストリの型識別子（"linear", "logistic", "multiclass", "mlp"）
	TypeID string `json:"type_id" yaml:"type_id"`

	// ModelType は人間向けのモデル名（情報用、検証には使わない）
	ModelType string `json:"model_type,omitempty" yaml:"model_type,omitempty"`

	// Version は形式のバージョン（互換性チェック用）
	Version string `json:"version" yaml:"version"`

	// Shape は構築時の形状パラメータ
	Shape []int `json:"shape" yaml:"shape,flow"`

	// Parameters はフラットなパラメータ列。空の場合は全ゼロのまま
	Parameters []float64 `json:"parameters,omitempty" yaml:"parameters,flow,omitempty"`

	// Metadata は追加のメタデータ
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Snapshot はネットワークの現在のパラメータからModelWeightsを作成
func Snapshot(typeID string, shape []int, net Network) *ModelWeights {
	s := make([]int, len(shape))
	copy(s, shape)
	return &ModelWeights{
		TypeID:     typeID,
		ModelType:  net.ModelType(),
		Version:    WeightsFormatVersion,
		Shape:      s,
		Parameters: net.Parameters(),
	}
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "decode weights json")
	}
	return nil
}

// ToYAML はModelWeightsをYAML形式にシリアライズ
func (mw *ModelWeights) ToYAML() ([]byte, error) {
	return yaml.Marshal(mw)
}

// FromYAML はYAML形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromYAML(data []byte) error {
	if err := yaml.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "decode weights yaml")
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
//
// パラメータ数と形状の整合性はモデル側（SetParameters）が検証する。
func (mw *ModelWeights) Validate() error {
	if mw.TypeID == "" {
		return errors.NewValueError("ModelWeights.Validate", "type_id is required")
	}
	if mw.Version == "" {
		return errors.NewValueError("ModelWeights.Validate", "version is required")
	}
	if mw.Version != WeightsFormatVersion {
		return errors.NewValueError("ModelWeights.Validate", "unsupported version "+mw.Version)
	}
	if len(mw.Shape) == 0 {
		return errors.NewValueError("ModelWeights.Validate", "shape is required")
	}
	for _, p := range mw.Parameters {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.NewValueError("ModelWeights.Validate", "parameters must be finite")
		}
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		TypeID:    mw.TypeID,
		ModelType: mw.ModelType,
		Version:   mw.Version,
		Shape:     make([]int, len(mw.Shape)),
	}
	copy(clone.Shape, mw.Shape)

	if mw.Parameters != nil {
		clone.Parameters = make([]float64, len(mw.Parameters))
		copy(clone.Parameters, mw.Parameters)
	}
	if mw.Metadata != nil {
		clone.Metadata = make(map[string]string, len(mw.Metadata))
		for k, v := range mw.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// Hash は型・形状・パラメータのビット列から SHA-256 を計算（検証用）
// ModelType と Metadata は含まない。
func (mw *ModelWeights) Hash() string {
	h := sha256.New()
	h.Write([]byte(mw.TypeID))
	var buf [8]byte
	for _, s := range mw.Shape {
		binary.LittleEndian.PutUint64(buf[:], uint64(s))
		h.Write(buf[:])
	}
	for _, p := range mw.Parameters {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
