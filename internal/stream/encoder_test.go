package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propchat/internal/model"
)

func TestEncode(t *testing.T) {
	bedrooms := 2
	image := "https://img/1.jpg"

	tests := []struct {
		name  string
		frame model.StreamFrame
		want  string
	}{
		{
			name:  "text",
			frame: model.TextFrame("Hola, ¿buscas comprar o alquilar?"),
			want:  `{"type":"text","content":"Hola, ¿buscas comprar o alquilar?"}`,
		},
		{
			name:  "error",
			frame: model.ErrorFrame("fallo"),
			want:  `{"type":"error","content":"fallo"}`,
		},
		{
			name:  "empty properties",
			frame: model.PropertiesFrame(nil),
			want:  `{"type":"properties","properties":[]}`,
		},
		{
			name: "properties",
			frame: model.PropertiesFrame([]model.PropertySummary{{
				ID: 1, Title: "Apto", Location: "Valencia", Price: 450,
				Bedrooms: &bedrooms, Type: "apartamento", OperationType: "alquiler", ImageURL: &image,
			}}),
			want: `{"type":"properties","properties":[{"id":1,"title":"Apto","location":"Valencia","price":450,` +
				`"bedrooms":2,"bathrooms":null,"area":null,"type":"apartamento","operation_type":"alquiler","image_url":"https://img/1.jpg"}]}`,
		},
		{
			name:  "newlines inside content stay escaped",
			frame: model.TextFrame("línea 1\nlínea 2"),
			want:  `{"type":"text","content":"línea 1\nlínea 2"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.frame)
			require.True(t, strings.HasSuffix(string(got), "\n"))
			assert.Equal(t, 1, strings.Count(string(got), "\n"), "one frame is one line")
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestEncode_UnknownTypeFallsBack(t *testing.T) {
	got := Encode(model.StreamFrame{Type: "bogus"})
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, "error", decoded["type"])
}

func TestWriter_FlushesEachFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	require.NoError(t, w.WriteFrame(model.TextFrame("uno")))
	assert.True(t, rec.Flushed)
	require.NoError(t, w.WriteFrame(model.TextFrame("dos")))

	scanner := bufio.NewScanner(rec.Body)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	assert.Equal(t, []string{
		`{"type":"text","content":"uno"}`,
		`{"type":"text","content":"dos"}`,
	}, lines)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriter_ReportsWriteErrors(t *testing.T) {
	w := NewWriter(brokenWriter{})
	assert.Error(t, w.WriteFrame(model.TextFrame("x")))
}
