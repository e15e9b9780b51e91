package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage legt Medien-Dateien im lokalen Dateisystem ab. Die Keys sind
// nach modul/jahr/monat strukturiert und werden unterhalb von Dir abgebildet.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

// NewLocalStorage erstellt einen LocalStorage und legt das Basis-Verzeichnis an.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save schreibt die Datei und gibt die öffentliche URL zurück.
func (l *LocalStorage) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + key, nil
}

// Delete entfernt die Datei; eine bereits fehlende Datei ist kein Fehler.
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.Dir, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
