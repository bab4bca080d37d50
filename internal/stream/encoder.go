// Package stream encodes chat frames as newline-delimited JSON and writes
// them to a flushing destination.
package stream

import (
	"encoding/json"
	"io"
	"net/http"

	"propchat/internal/model"
)

// ContentType of an NDJSON frame stream
const ContentType = "application/x-ndjson; charset=utf-8"

// fallbackLine is written when a frame cannot be marshalled
var fallbackLine = []byte(`{"type":"error","content":"Disculpa, tuve un problema. ¿Podrías intentarlo de nuevo?"}` + "\n")

type textFrame struct {
	Type    model.FrameType `json:"type"`
	Content string          `json:"content"`
}

type propertiesFrame struct {
	Type       model.FrameType         `json:"type"`
	Properties []model.PropertySummary `json:"properties"`
}

// Encode serializes frame as one JSON object followed by '\n'
func Encode(frame model.StreamFrame) []byte {
	var v any
	switch frame.Type {
	case model.FrameProperties:
		props := frame.Properties
		if props == nil {
			props = []model.PropertySummary{}
		}
		v = propertiesFrame{Type: model.FrameProperties, Properties: props}
	case model.FrameText, model.FrameError:
		v = textFrame{Type: frame.Type, Content: frame.Content}
	default:
		return fallbackLine
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fallbackLine
	}
	return append(data, '\n')
}

// Writer writes encoded frames and flushes after each one
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter wraps w; flushing is used when w implements http.Flusher
func NewWriter(w io.Writer) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// WriteFrame writes one frame. An error means the reader is gone.
func (w *Writer) WriteFrame(frame model.StreamFrame) error {
	if _, err := w.w.Write(Encode(frame)); err != nil {
		return err
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}
