package storage

import "context"

// Storage abstrahiert die Ablage der Medien-Dateien. Save gibt die öffentliche
// URL der gespeicherten Datei zurück.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
