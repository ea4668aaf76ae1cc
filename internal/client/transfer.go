package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hitoshi/linkvault/internal/model"
)

// ExportFileName はエクスポートファイルの名前を返す。
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("linkvault-export-%s.json", t.UTC().Format("2006-01-02"))
}

// Export はローカルのコレクション一覧をインデント付きJSON配列として書き出す。
func (a *App) Export(w io.Writer) error {
	state := a.State()
	collections := state.Collections
	if collections == nil {
		collections = []model.Collection{}
	}

	data, err := json.MarshalIndent(collections, "", "  ")
	if err != nil {
		a.fail("export", err, "Failed to export data")
		return fmt.Errorf("failed to encode collections: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		a.fail("export", err, "Failed to export data")
		return fmt.Errorf("failed to write export: %w", err)
	}

	a.notifier.Notify(LevelSuccess, "Data exported successfully!")
	return nil
}

// ImportFailure はインポートで作成に失敗した要素。
type ImportFailure struct {
	Index int
	Err   error
}

// ImportResult はインポートの結果。
type ImportResult struct {
	Total    int
	Imported int
	Failures []ImportFailure
}

// Import はJSON配列の各要素をそのままコレクション作成APIに送信する。
// 要素の形式は検証せず、作成に失敗した要素はFailuresに記録する。
// 完了後にコレクション一覧を再取得する。
func (a *App) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		a.fail("import", err, "Failed to import data. Invalid file format.")
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		a.fail("import", err, "Failed to import data. Invalid file format.")
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileFormat, err)
	}
	if _, ok := raw.([]interface{}); !ok {
		a.notifier.Notify(LevelError, "Invalid file format")
		return nil, ErrInvalidFileFormat
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		a.fail("import", err, "Failed to import data. Invalid file format.")
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileFormat, err)
	}

	result := &ImportResult{Total: len(docs)}
	for i, doc := range docs {
		if _, err := a.api.CreateCollectionRaw(ctx, token, doc); err != nil {
			if IsSessionExpired(err) {
				a.expireSession()
				return result, err
			}
			result.Failures = append(result.Failures, ImportFailure{Index: i, Err: err})
			continue
		}
		result.Imported++
	}

	if err := a.refresh(ctx); err != nil {
		return result, err
	}

	if len(result.Failures) > 0 {
		a.notifier.Notify(LevelError, fmt.Sprintf("Imported %d of %d collections", result.Imported, result.Total))
		return result, nil
	}
	a.notifier.Notify(LevelSuccess, "Data imported successfully!")
	return result, nil
}
