package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Weight is one keyed entry of a Weights table.
type Weight struct {
	Key   string
	Value float64
}

// Weights is an insertion-ordered table of non-negative weights or multipliers.
// Order decides which key a boundary roll lands on, so it survives JSON round trips.
type Weights []Weight

func (w Weights) Get(key string) (float64, bool) {
	for _, e := range w {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

func (w Weights) GetOr(key string, fallback float64) float64 {
	if v, ok := w.Get(key); ok {
		return v
	}
	return fallback
}

// Set replaces the value for key in place, or appends it.
func (w Weights) Set(key string, value float64) Weights {
	for i := range w {
		if w[i].Key == key {
			w[i].Value = value
			return w
		}
	}
	return append(w, Weight{Key: key, Value: value})
}

func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	copy(out, w)
	return out
}

func (w Weights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (w *Weights) UnmarshalJSON(data []byte) error {
	out := Weights{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("weight %q: %w", key, err)
		}
		out = out.Set(key, v)
		return nil
	})
	if err != nil {
		return err
	}
	*w = out
	return nil
}

// decodeOrderedObject walks a JSON object member by member in document order.
// A JSON null decodes as an empty object.
func decodeOrderedObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// Uniform is the only draw WeightedChoice needs.
type Uniform interface {
	Float64() float64
}

// WeightedChoice picks a key with probability proportional to its weight.
// Non-positive weights never win; ok is false when nothing can be chosen.
func WeightedChoice(weights Weights, rng Uniform) (key string, ok bool) {
	total := 0.0
	for _, e := range weights {
		if e.Value > 0 {
			total += e.Value
		}
	}
	if total <= 0 {
		return "", false
	}
	roll := rng.Float64() * total
	upto := 0.0
	for _, e := range weights {
		if e.Value <= 0 {
			continue
		}
		upto += e.Value
		if roll <= upto {
			return e.Key, true
		}
	}
	return "", false
}
