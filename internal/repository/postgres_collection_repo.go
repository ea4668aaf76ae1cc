package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/linkvault/internal/model"
)

// PostgresCollectionRepo はPostgreSQLを使用したコレクションリポジトリ。
// リンクはlinksカラムにJSONB配列として埋め込む。
type PostgresCollectionRepo struct {
	db *sql.DB
}

// NewPostgresCollectionRepo はPostgresCollectionRepoを生成する。
func NewPostgresCollectionRepo(db *sql.DB) *PostgresCollectionRepo {
	return &PostgresCollectionRepo{db: db}
}

const collectionColumns = `id, user_id, title, links, created_at, updated_at`

// ListByUserID はユーザーのコレクションを作成日時の降順で返す。
func (r *PostgresCollectionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Collection, error) {
	collections := []*model.Collection{}
	if !isUUID(userID) {
		return collections, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM collections
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	return collections, nil
}

// FindByIDAndUserID は所有者を指定してコレクションを取得する。見つからない場合はnilを返す。
func (r *PostgresCollectionRepo) FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Collection, error) {
	if !isUUID(id) || !isUUID(userID) {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create はコレクションを作成する。
func (r *PostgresCollectionRepo) Create(ctx context.Context, c *model.Collection) error {
	links, err := marshalLinks(c.Links)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO collections (id, user_id, title, links, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.Title, links, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	return nil
}

// Replace はコレクションのドキュメントを丸ごと書き換える。
func (r *PostgresCollectionRepo) Replace(ctx context.Context, c *model.Collection) error {
	links, err := marshalLinks(c.Links)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE collections SET title = $1, links = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		c.Title, links, c.UpdatedAt, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	return nil
}

// DeleteByIDAndUserID はコレクションを削除する。
func (r *PostgresCollectionRepo) DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error) {
	if !isUUID(id) || !isUUID(userID) {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM collections WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(s rowScanner) (*model.Collection, error) {
	c := &model.Collection{}
	var links []byte
	if err := s.Scan(&c.ID, &c.UserID, &c.Title, &links, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}
	if err := json.Unmarshal(links, &c.Links); err != nil {
		return nil, fmt.Errorf("failed to decode links of collection %s: %w", c.ID, err)
	}
	if c.Links == nil {
		c.Links = []model.Link{}
	}
	return c, nil
}

func marshalLinks(links []model.Link) ([]byte, error) {
	if links == nil {
		links = []model.Link{}
	}
	b, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode links: %w", err)
	}
	return b, nil
}

// isUUID はPostgreSQLのuuid型として解釈できるかを判定する。
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// compile-time interface check
var _ CollectionRepository = (*PostgresCollectionRepo)(nil)
