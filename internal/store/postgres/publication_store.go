package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/store"
)

type PublicationStore struct {
	db *sql.DB
}

func NewPublicationStore(db *sql.DB) *PublicationStore { return &PublicationStore{db: db} }

// Create inserts a publication and its publication_media rows atomically,
// grounded on the teacher's BeginTx/defer Rollback/Commit idiom
// (internal/infrastructure/persistence/post_repository.go Create).
func (s *PublicationStore) Create(ctx context.Context, p *publication.Publication, media []*publication.PublicationMedia) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin create publication tx: %w", err)
	}
	defer tx.Rollback()

	cfg, err := json.Marshal(p.PlatformConfig())
	if err != nil {
		return fmt.Errorf("postgres: marshal platform_config: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO publications (
			id, content_id, social_account_id, platform, format, publish_at, status,
			error, custom_caption, platform_config, platform_id, link,
			kanban_column_id, kanban_order, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID(), p.ContentID(), p.SocialAccountID(), string(p.Platform()), string(p.Format()),
		p.PublishAt(), string(p.Status()), p.ErrorMessage(), p.CustomCaption(), cfg,
		p.PlatformID(), p.Link(), p.KanbanColumnID(), p.KanbanOrder(), p.CreatedAt(), p.UpdatedAt(),
	); err != nil {
		return fmt.Errorf("postgres: insert publication: %w", err)
	}

	if err := insertPublicationMedia(ctx, tx, media); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPublicationMedia(ctx context.Context, tx *sql.Tx, media []*publication.PublicationMedia) error {
	for _, pm := range media {
		crop, err := json.Marshal(pm.CropData())
		if err != nil {
			return fmt.Errorf("postgres: marshal crop_data: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO publication_media (id, publication_id, media_id, "order", crop_data)
			VALUES ($1,$2,$3,$4,$5)`,
			pm.ID(), pm.PublicationID(), pm.MediaID(), pm.Order(), crop,
		); err != nil {
			return fmt.Errorf("postgres: insert publication_media: %w", err)
		}
	}
	return nil
}

// Update replaces a publication's mutable fields and atomically
// replaces its publication_media rows ("delete all referencing rows +
// create replacements", spec §4.2).
func (s *PublicationStore) Update(ctx context.Context, p *publication.Publication, media []*publication.PublicationMedia) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin update publication tx: %w", err)
	}
	defer tx.Rollback()

	cfg, err := json.Marshal(p.PlatformConfig())
	if err != nil {
		return fmt.Errorf("postgres: marshal platform_config: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE publications SET
			publish_at=$1, status=$2, error=$3, custom_caption=$4, platform_config=$5,
			platform_id=$6, link=$7, kanban_column_id=$8, kanban_order=$9, updated_at=$10
		WHERE id=$11`,
		p.PublishAt(), string(p.Status()), p.ErrorMessage(), p.CustomCaption(), cfg,
		p.PlatformID(), p.Link(), p.KanbanColumnID(), p.KanbanOrder(), p.UpdatedAt(), p.ID(),
	)
	if err != nil {
		return fmt.Errorf("postgres: update publication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM publication_media WHERE publication_id=$1`, p.ID()); err != nil {
		return fmt.Errorf("postgres: delete publication_media: %w", err)
	}
	if err := insertPublicationMedia(ctx, tx, media); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PublicationStore) FindByID(ctx context.Context, clientID, id uuid.UUID) (*publication.Publication, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.content_id, p.social_account_id, p.platform, p.format, p.publish_at, p.status,
		       p.error, p.custom_caption, p.platform_config, p.platform_id, p.link,
		       p.kanban_column_id, p.kanban_order, p.created_at, p.updated_at
		FROM publications p
		JOIN contents c ON c.id = p.content_id
		WHERE p.id=$1 AND c.client_id=$2`, id, clientID)
	return scanPublication(row)
}

func (s *PublicationStore) Delete(ctx context.Context, clientID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM publications p USING contents c
		WHERE p.content_id = c.id AND p.id=$1 AND c.client_id=$2 AND p.status <> 'PUBLISHING'`, id, clientID)
	if err != nil {
		return fmt.Errorf("postgres: delete publication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PublicationStore) List(ctx context.Context, clientID uuid.UUID, filter store.ListFilter) ([]*publication.Publication, int, error) {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}

	where := `c.client_id = $1`
	args := []interface{}{clientID}
	n := 1
	add := func(clause string, v interface{}) {
		n++
		where += fmt.Sprintf(" AND %s $%d", clause, n)
		args = append(args, v)
	}
	if filter.Platform != nil {
		add("p.platform =", *filter.Platform)
	}
	if filter.Status != nil {
		add("p.status =", *filter.Status)
	}
	if filter.ContentID != nil {
		add("p.content_id =", *filter.ContentID)
	}
	if filter.CalendarID != nil {
		add("c.calendar_id =", *filter.CalendarID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT count(*) FROM publications p JOIN contents c ON c.id = p.content_id WHERE %s`, where), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres: count publications: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT p.id, p.content_id, p.social_account_id, p.platform, p.format, p.publish_at, p.status,
		       p.error, p.custom_caption, p.platform_config, p.platform_id, p.link,
		       p.kanban_column_id, p.kanban_order, p.created_at, p.updated_at
		FROM publications p JOIN contents c ON c.id = p.content_id
		WHERE %s ORDER BY p.publish_at ASC LIMIT $%d OFFSET $%d`, where, n+1, n+2), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: list publications: %w", err)
	}
	defer rows.Close()

	var out []*publication.Publication
	for rows.Next() {
		p, err := scanPublicationRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ClaimDue is the dispatcher's conditional-claim primitive (spec §4.2,
// §4.6): within one transaction, SELECT ... FOR UPDATE SKIP LOCKED the
// due, SCHEDULED rows ordered by publish_at, then UPDATE them to
// PUBLISHING, then load each one's full dispatcher projection (content
// caption, ordered media, social account with tokens). A second
// concurrent dispatcher's SELECT simply skips the locked rows and finds
// nothing left to claim (spec §8 invariant 2, S6).
func (s *PublicationStore) ClaimDue(ctx context.Context, now time.Time, batchSize int) ([]*store.PublicationForPublish, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("postgres: begin claim tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM publications
		WHERE status = 'SCHEDULED' AND publish_at <= $1
		ORDER BY publish_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, now, batchSize)
	if err != nil {
		return nil, fmt.Errorf("postgres: select due publications: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan claim id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE publications SET status='PUBLISHING', updated_at=$1 WHERE id=$2`, now, id,
		); err != nil {
			return nil, fmt.Errorf("postgres: claim publishing transition: %w", err)
		}
	}

	projections := make([]*store.PublicationForPublish, 0, len(ids))
	for _, id := range ids {
		proj, err := loadProjection(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		projections = append(projections, proj)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit claim tx: %w", err)
	}
	return projections, nil
}

func loadProjection(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*store.PublicationForPublish, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, content_id, social_account_id, platform, format, publish_at, status,
		       error, custom_caption, platform_config, platform_id, link,
		       kanban_column_id, kanban_order, created_at, updated_at
		FROM publications WHERE id=$1`, id)
	p, err := scanPublication(row)
	if err != nil {
		return nil, fmt.Errorf("postgres: load claimed publication: %w", err)
	}

	var caption string
	if err := tx.QueryRowContext(ctx, `SELECT caption FROM contents WHERE id=$1`, p.ContentID()).Scan(&caption); err != nil {
		return nil, fmt.Errorf("postgres: load content caption: %w", err)
	}

	mediaRows, err := tx.QueryContext(ctx, `
		SELECT m.id, m.content_id, m.url, m.key, m.type, m.mime_type, m.size,
		       m.width, m.height, m.duration, m.thumbnail, m.order, m.created_at,
		       pm."order", pm.crop_data
		FROM publication_media pm
		JOIN media m ON m.id = pm.media_id
		WHERE pm.publication_id=$1
		ORDER BY pm."order" ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: load publication media: %w", err)
	}
	defer mediaRows.Close()

	var ordered []store.OrderedMedia
	for mediaRows.Next() {
		var (
			mid, contentID                     uuid.UUID
			url, key, mType, mime               string
			size                                int64
			width, height                       sql.NullInt64
			duration                            sql.NullFloat64
			thumbnail                           sql.NullString
			order, pmOrder                      int
			createdAt                           time.Time
			cropRaw                             []byte
		)
		if err := mediaRows.Scan(&mid, &contentID, &url, &key, &mType, &mime, &size,
			&width, &height, &duration, &thumbnail, &order, &createdAt, &pmOrder, &cropRaw); err != nil {
			return nil, fmt.Errorf("postgres: scan publication media: %w", err)
		}
		var w, h *int
		if width.Valid {
			v := int(width.Int64)
			w = &v
		}
		if height.Valid {
			v := int(height.Int64)
			h = &v
		}
		var dur *float64
		if duration.Valid {
			dur = &duration.Float64
		}
		var thumb *string
		if thumbnail.Valid {
			thumb = &thumbnail.String
		}
		var crop map[string]interface{}
		if len(cropRaw) > 0 {
			_ = json.Unmarshal(cropRaw, &crop)
		}
		ordered = append(ordered, store.OrderedMedia{
			Media: content.ReconstructMedia(mid, contentID, url, key, content.MediaType(mType), mime, size, w, h, dur, thumb, order, createdAt),
			Order: pmOrder,
			Crop:  crop,
		})
	}

	acct, err := loadAccountTx(ctx, tx, p.SocialAccountID())
	if err != nil {
		return nil, fmt.Errorf("postgres: load social account for claim: %w", err)
	}

	return &store.PublicationForPublish{
		Publication:    p,
		ContentCaption: caption,
		Media:          ordered,
		Account:        acct,
	}, nil
}

func loadAccountTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*socialaccount.Account, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, platform, platform_user_id, username,
		       access_token, refresh_token, expires_at, is_active, disconnected_at
		FROM social_accounts WHERE id=$1`, id)
	return scanAccount(row)
}

func (s *PublicationStore) MarkPublished(ctx context.Context, id uuid.UUID, platformID, link *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE publications SET status='PUBLISHED', platform_id=$1, link=$2, error=NULL, updated_at=$3
		WHERE id=$4 AND status='PUBLISHING'`, platformID, link, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres: mark published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return publication.ErrNotPublishing
	}
	return nil
}

func (s *PublicationStore) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE publications SET status='ERROR', error=$1, updated_at=$2
		WHERE id=$3 AND status='PUBLISHING'`, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres: mark error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return publication.ErrNotPublishing
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanPublication(row scannable) (*publication.Publication, error) {
	return scanPublicationRows(row)
}

func scanPublicationRows(row scannable) (*publication.Publication, error) {
	var (
		id, contentID, socialAccountID uuid.UUID
		platform, format, status       string
		publishAt, createdAt, updatedAt time.Time
		errMsg, customCaption           sql.NullString
		platformConfigRaw               []byte
		platformID, link                sql.NullString
		kanbanColumnID                  uuid.NullUUID
		kanbanOrder                     sql.NullInt64
	)
	if err := row.Scan(&id, &contentID, &socialAccountID, &platform, &format, &publishAt, &status,
		&errMsg, &customCaption, &platformConfigRaw, &platformID, &link, &kanbanColumnID, &kanbanOrder,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan publication: %w", err)
	}

	var cfg publication.PlatformConfig
	if len(platformConfigRaw) > 0 {
		_ = json.Unmarshal(platformConfigRaw, &cfg)
	}

	var em, cc, pid, lk *string
	if errMsg.Valid {
		em = &errMsg.String
	}
	if customCaption.Valid {
		cc = &customCaption.String
	}
	if platformID.Valid {
		pid = &platformID.String
	}
	if link.Valid {
		lk = &link.String
	}
	var kcID *uuid.UUID
	if kanbanColumnID.Valid {
		kcID = &kanbanColumnID.UUID
	}
	var kOrder *int
	if kanbanOrder.Valid {
		v := int(kanbanOrder.Int64)
		kOrder = &v
	}

	return publication.Reconstruct(id, contentID, socialAccountID,
		socialaccount.Platform(platform), publication.Format(format), publishAt,
		publication.Status(status), em, cc, cfg, pid, lk, kcID, kOrder, createdAt, updatedAt), nil
}

func scanAccount(row scannable) (*socialaccount.Account, error) {
	var (
		id, userID, clientID uuid.UUID
		platform, platformUserID, username string
		accessToken, refreshToken           sql.NullString
		expiresAt                           sql.NullTime
		isActive                            bool
		disconnectedAt                      sql.NullTime
	)
	if err := row.Scan(&id, &userID, &clientID, &platform, &platformUserID, &username,
		&accessToken, &refreshToken, &expiresAt, &isActive, &disconnectedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan social account: %w", err)
	}
	var exp *time.Time
	if expiresAt.Valid {
		exp = &expiresAt.Time
	}
	var disc *time.Time
	if disconnectedAt.Valid {
		disc = &disconnectedAt.Time
	}

	at, err := decryptToken(accessToken.String)
	if err != nil {
		return nil, err
	}
	rt, err := decryptToken(refreshToken.String)
	if err != nil {
		return nil, err
	}

	return socialaccount.Reconstruct(id, userID, clientID, socialaccount.Platform(platform),
		platformUserID, username, at, rt, exp, isActive, disc), nil
}
