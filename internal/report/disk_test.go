package report

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deixis/glyphrun/internal/lang"
	"github.com/deixis/glyphrun/internal/output"
	"github.com/deixis/glyphrun/internal/workflow"
	"github.com/go-audio/audio"
)

var pngData, wavData = encodeSamples()

func encodeSamples() ([]byte, []byte) {
	png, err := output.PNGEncoder{}.EncodeImage(image.NewGray(image.Rect(0, 0, 4, 4)))
	if err != nil {
		panic(err)
	}
	wav, err := output.WAVEncoder{}.EncodeAudio(&audio.Float32Buffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:   make([]float32, 64),
	})
	if err != nil {
		panic(err)
	}
	return png, wav
}

func sampleRun() *workflow.RunResult {
	return &workflow.RunResult{
		ID: "run-1",
		Items: []output.Item{
			output.MiscItem(lang.Vector(1, 2, 3)),
			{Kind: output.Image, MIMEType: "image/png", Data: pngData},
			{Kind: output.Audio, MIMEType: "audio/wav", Data: wavData},
			output.ContinuationItem(4),
		},
		Stdout: []byte("hi\n"),
	}
}

func TestDiskStore_SaveLoad(t *testing.T) {
	s := NewDiskStore(t.TempDir())

	m, err := s.Save(sampleRun())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(m.Items) != 4 {
		t.Fatalf("len(Items) = %d, want 4", len(m.Items))
	}
	if m.Items[0].Text != "[1 2 3]" || m.Items[0].File != "" {
		t.Errorf("Items[0] = %+v, want text [1 2 3]", m.Items[0])
	}
	if m.Items[3].Text != "… and 4 more values" {
		t.Errorf("Items[3] = %+v, want continuation text", m.Items[3])
	}

	for i, want := range map[int][]byte{1: pngData, 2: wavData} {
		e := m.Items[i]
		data, err := os.ReadFile(e.File)
		if err != nil {
			t.Fatalf("reading item %d: %v", i, err)
		}
		if !bytes.Equal(data, want) {
			t.Errorf("item %d differs from the encoded data", i)
		}
	}
	if !strings.HasSuffix(m.Items[1].File, "1.png") || !strings.HasSuffix(m.Items[2].File, "2.wav") {
		t.Errorf("files = %s, %s, want 1.png and 2.wav", m.Items[1].File, m.Items[2].File)
	}

	loaded, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID != "run-1" || loaded.Stdout != "hi\n" || len(loaded.Items) != 4 {
		t.Errorf("Load = %+v, want the saved manifest", loaded)
	}
}

func TestDiskStore_LazyTempDir(t *testing.T) {
	s := NewDiskStore("")
	m, err := s.Save(sampleRun())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(m.Dir)) })

	if _, err := os.Stat(filepath.Join(m.Dir, ManifestFile)); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestDiskStore_MismatchedData(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	_, err := s.Save(&workflow.RunResult{
		ID:    "run-2",
		Items: []output.Item{{Kind: output.Image, MIMEType: "image/png", Data: wavData}},
	})
	if err == nil || !strings.Contains(err.Error(), "not image/png") {
		t.Fatalf("error = %v, want a type mismatch", err)
	}
}

func TestDiskStore_LoadMissing(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	if _, err := s.Load("nope"); err == nil {
		t.Fatal("expected an error")
	}
}
