package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// sniffSize: сколько байт читаем для определения типа по магическим байтам.
const sniffSize = 512

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/zip": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// SavedFile описывает сохранённое вложение.
type SavedFile struct {
	Path string
	Size int64
	MIME string
}

// AttachmentStorage хранит вложения проектов, заявок и сообщений на диске.
type AttachmentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

func NewAttachmentStorage(rootPath string, maxUploadMB int64) (*AttachmentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &AttachmentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save определяет реальный тип файла, сохраняет его в каталог пользователя
// и возвращает путь относительно корня хранилища.
func (s *AttachmentStorage) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (*SavedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.Validation(map[string]string{"file": "файл не может быть пустым"})
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, apperror.Validation(map[string]string{"file": "не удалось определить тип файла"})
	}
	if !allowedMimeTypes[kind.MIME.Value] {
		return nil, apperror.Validation(map[string]string{"file": fmt.Sprintf("неподдерживаемый тип файла (%s)", kind.MIME.Value)})
	}

	// Расширение берём из реального типа, а не из имени файла клиента.
	safeName := sanitizeFilename(originalName)
	base := strings.TrimSuffix(safeName, filepath.Ext(safeName))
	if base == "" {
		base = "file"
	}
	fileName := fmt.Sprintf("%d_%s.%s", time.Now().UnixNano(), base, kind.Extension)

	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, apperror.Validation(map[string]string{
			"file": fmt.Sprintf("размер файла превышает лимит %d байт", s.maxUploadBytes),
		})
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &SavedFile{
		Path: filepath.ToSlash(filepath.Join(userID.String(), fileName)),
		Size: written,
		MIME: kind.MIME.Value,
	}, nil
}

// Delete удаляет вложение. Отсутствующий файл ошибкой не считается.
func (s *AttachmentStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.Clean("/"+relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
