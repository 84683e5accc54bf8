package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidPoints = errors.New("invalid stored points")

const pointsSchema = `{
	"type": "array",
	"maxItems": 4,
	"items": {
		"type": "object",
		"required": ["x", "y"],
		"properties": {
			"x": {"type": "number"},
			"y": {"type": "number"}
		}
	}
}`

var pointsSchemaLoader = gojsonschema.NewStringLoader(pointsSchema)

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointStore reads and writes the calibration point set
type PointStore struct {
	store Store
}

// NewPointStore wraps a key-value store
func NewPointStore(s Store) *PointStore {
	return &PointStore{store: s}
}

// Store returns the underlying key-value store
func (p *PointStore) Store() Store {
	return p.store
}

// EncodePoints serializes points as an ordered array of {"x","y"} objects
func EncodePoints(points []geometry.Point) ([]byte, error) {
	out := make([]pointJSON, len(points))
	for i, pt := range points {
		if !pt.IsFinite() {
			return nil, fmt.Errorf("%w: point %d is not finite", ErrInvalidPoints, i)
		}
		out[i] = pointJSON{X: pt.X, Y: pt.Y}
	}
	return json.Marshal(out)
}

// DecodePoints validates and parses a stored point array
func DecodePoints(data []byte) ([]geometry.Point, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidPoints)
	}

	result, err := gojsonschema.Validate(pointsSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoints, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPoints, strings.Join(msgs, "; "))
	}

	items := gjson.ParseBytes(data).Array()
	points := make([]geometry.Point, len(items))
	for i, item := range items {
		points[i] = geometry.Point{X: item.Get("x").Float(), Y: item.Get("y").Float()}
	}
	return points, nil
}

// SavePoints stores the point set under PointsKey
func (p *PointStore) SavePoints(points []geometry.Point) error {
	data, err := EncodePoints(points)
	if err != nil {
		return err
	}
	return p.store.Set(PointsKey, data)
}

// LoadPoints reads the point set stored under PointsKey
func (p *PointStore) LoadPoints() ([]geometry.Point, error) {
	data, err := p.store.Get(PointsKey)
	if err != nil {
		return nil, err
	}
	return DecodePoints(data)
}
