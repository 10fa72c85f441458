package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interiorly/interiorly/internal/database"
	"github.com/interiorly/interiorly/internal/database/dbtest"
	"github.com/interiorly/interiorly/internal/model"
)

// setupTestDB はマイグレーション済みのテスト用データベースを返す。
// テストごとに全テーブルを空にする。
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := dbtest.URL(t)
	_, err := database.RunMigrations(dbURL)
	require.NoError(t, err)

	db, err := database.Open(dbURL, database.PoolConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`TRUNCATE designer_deals, customers, designers, sessions, users CASCADE`)
	require.NoError(t, err)

	return db
}

func insertUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO users (id, email, name) VALUES ($1, $2, 'Test User')`, id, email)
	require.NoError(t, err)
	return id
}

func insertDesigner(t *testing.T, db *sql.DB, userID, fullName string) string {
	t.Helper()

	var id string
	err := db.QueryRow(
		`INSERT INTO designers (user_id, full_name, company_name, city, rating)
		 VALUES ($1, $2, 'Studio', 'Austin', 4.80) RETURNING id`,
		userID, fullName,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// --- UserRepository ---

func TestPostgresUserRepo_UpsertAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)
	user := &model.User{ID: uuid.NewString(), Email: "jane@example.com", Name: "Jane Doe", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Upsert(ctx, user))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.False(t, got.IsAdmin)
}

func TestPostgresUserRepo_Upsert_KeepsAdminFlagAndName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	id := insertUser(t, db, "admin@example.com")
	_, err := db.Exec(`UPDATE users SET is_admin = true WHERE id = $1`, id)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.Upsert(ctx, &model.User{ID: id, Email: "admin@new.example.com", Name: "", CreatedAt: now, UpdatedAt: now}))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "admin@new.example.com", got.Email)
	assert.Equal(t, "Test User", got.Name)
}

func TestPostgresUserRepo_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)

	got, err := repo.FindByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

// --- SessionRepository ---

func TestPostgresSessionRepo_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresSessionRepo(db)
	ctx := context.Background()
	userID := insertUser(t, db, "s@example.com")

	session := &model.Session{
		ID:          "session-1",
		UserID:      userID,
		Email:       "s@example.com",
		Name:        "Test User",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.FindByID(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "tok", got.AccessToken)

	require.NoError(t, repo.DeleteByID(ctx, "session-1"))
	got, err = repo.FindByID(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 存在しないセッションの削除はエラーにならない
	assert.NoError(t, repo.DeleteByID(ctx, "session-1"))
}

func TestPostgresSessionRepo_ExpiredSessionIsHiddenAndPurged(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresSessionRepo(db)
	ctx := context.Background()
	userID := insertUser(t, db, "e@example.com")

	for _, s := range []*model.Session{
		{ID: "expired-1", UserID: userID, Email: "e@example.com", ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now()},
		{ID: "expired-2", UserID: userID, Email: "e@example.com", ExpiresAt: time.Now().Add(-time.Minute), CreatedAt: time.Now()},
		{ID: "alive", UserID: userID, Email: "e@example.com", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()},
	} {
		require.NoError(t, repo.Create(ctx, s))
	}

	got, err := repo.FindByID(ctx, "expired-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err = repo.FindByID(ctx, "alive")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// --- Designer / Customer ---

func TestPostgresDesignerRepo_FindIDByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresDesignerRepo(db)
	ctx := context.Background()

	designerUser := insertUser(t, db, "d@example.com")
	designerID := insertDesigner(t, db, designerUser, "Dana Designer")
	otherUser := insertUser(t, db, "o@example.com")

	got, err := repo.FindIDByUserID(ctx, designerUser)
	require.NoError(t, err)
	assert.Equal(t, designerID, got)

	got, err = repo.FindIDByUserID(ctx, otherUser)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostgresDesignerRepo_InvalidUUID_ReturnsError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresDesignerRepo(db)

	_, err := repo.FindIDByUserID(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}

func TestPostgresCustomerRepo_ExistsByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresCustomerRepo(db)
	ctx := context.Background()

	customer := insertUser(t, db, "c@example.com")
	_, err := db.Exec(`INSERT INTO customers (user_id, project_title) VALUES ($1, 'Living room')`, customer)
	require.NoError(t, err)
	stranger := insertUser(t, db, "x@example.com")

	exists, err := repo.ExistsByUserID(ctx, customer)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUserID(ctx, stranger)
	require.NoError(t, err)
	assert.False(t, exists)
}

// --- DealRepository ---

func TestPostgresDealRepo_ListActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresDealRepo(db)
	ctx := context.Background()

	designerID := insertDesigner(t, db, insertUser(t, db, "deals@example.com"), "Dana Designer")
	now := time.Now()

	insert := func(title string, featured, active bool, from, until, created time.Time) {
		t.Helper()
		_, err := db.Exec(
			`INSERT INTO designer_deals
			   (designer_id, title, description, discount_percent, original_price, deal_price,
			    is_featured, is_active, valid_from, valid_until, created_at)
			 VALUES ($1, $2, '<p>Deal</p>', 15.50, 1000.00, 845.00, $3, $4, $5, $6, $7)`,
			designerID, title, featured, active, from, until, created,
		)
		require.NoError(t, err)
	}

	day := 24 * time.Hour
	insert("old regular", false, true, now.Add(-day), now.Add(day), now.Add(-3*time.Hour))
	insert("new regular", false, true, now.Add(-day), now.Add(day), now.Add(-1*time.Hour))
	insert("featured", true, true, now.Add(-day), now.Add(day), now.Add(-5*time.Hour))
	insert("inactive", true, false, now.Add(-day), now.Add(day), now)
	insert("expired", true, true, now.Add(-2*day), now.Add(-day), now)
	insert("upcoming", true, true, now.Add(day), now.Add(2*day), now)

	deals, err := repo.ListActive(ctx, now, 10)
	require.NoError(t, err)

	titles := make([]string, 0, len(deals))
	for _, d := range deals {
		titles = append(titles, d.Title)
	}
	assert.Equal(t, []string{"featured", "new regular", "old regular"}, titles)

	first := deals[0]
	assert.True(t, first.DiscountPercent.Equal(decimal.RequireFromString("15.50")))
	assert.True(t, first.OriginalPrice.Valid)
	assert.True(t, first.DealPrice.Decimal.Equal(decimal.NewFromInt(845)))
	assert.Equal(t, "Dana Designer", first.Designer.FullName)
	assert.Equal(t, "Austin", first.Designer.City)
	assert.True(t, first.Designer.Rating.Decimal.Equal(decimal.RequireFromString("4.8")))
	assert.Empty(t, first.ImageURL)
}

func TestPostgresDealRepo_ListActive_RespectsLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresDealRepo(db)
	designerID := insertDesigner(t, db, insertUser(t, db, "limit@example.com"), "Lim")

	for i := 0; i < 12; i++ {
		_, err := db.Exec(
			`INSERT INTO designer_deals (designer_id, title, valid_from, valid_until)
			 VALUES ($1, 'Deal', now() - interval '1 day', now() + interval '1 day')`,
			designerID,
		)
		require.NoError(t, err)
	}

	deals, err := repo.ListActive(context.Background(), time.Now(), 10)
	require.NoError(t, err)
	assert.Len(t, deals, 10)
}
