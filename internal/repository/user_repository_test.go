package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"user-management-server/config"
	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/repository"
)

var userColumns = []string{"uuid", "email", "full_name", "password_hash", "role", "status", "created_at", "updated_at", "last_login"}

func newMockRepository(t *testing.T) (*repository.UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := repository.NewUserRepository(&config.Database{DB: sqlxDB})

	return repo, mock
}

func userRow(uuid, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).
		AddRow(uuid, email, "Иван Петров", "$argon2id$...", model.RoleUser, model.StatusActive, now, now, nil)
}

func TestUserRepository_CreateUser(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	user := &model.User{
		UUID:         "u1",
		Email:        "user@example.com",
		FullName:     "Иван Петров",
		PasswordHash: "$argon2id$...",
		Role:         model.RoleUser,
		Status:       model.StatusActive,
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "user@example.com", "Иван Петров", "$argon2id$...", model.RoleUser, model.StatusActive).
		WillReturnRows(userRow("u1", "user@example.com"))

	created, err := repo.CreateUser(ctx, user)

	assert.NoError(t, err)
	assert.Equal(t, "u1", created.UUID)
	assert.Equal(t, "user@example.com", created.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	created, err := repo.CreateUser(context.Background(), &model.User{UUID: "u1", Email: "dup@example.com"})

	assert.Nil(t, created)
	// проигранная гонка вставки выглядит так же, как обычный дубликат
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserRepository_FindByUUID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE uuid").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.FindByUUID(context.Background(), "missing")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_FindByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("User@Example.com").
		WillReturnRows(userRow("u1", "user@example.com"))

	user, err := repo.FindByEmail(context.Background(), "User@Example.com")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_EmailTaken_NoExclusion(t *testing.T) {
	repo, mock := newMockRepository(t)

	// путь регистрации: excludeUUID пуст, сравнение с колонкой uuid в
	// запрос не попадает - пустая строка не кастуется к типу uuid
	mock.ExpectQuery(`^SELECT EXISTS \(SELECT 1 FROM users WHERE lower\(email\) = lower\(\$1\)\)$`).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.EmailTaken(context.Background(), "user@example.com", "")

	assert.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_EmailTaken_ExcludesOwnRecord(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user@example.com", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.EmailTaken(context.Background(), "user@example.com", "u1")

	assert.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("missing", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "missing", "newhash")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_UpdateStatusCAS(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()
	updatedAt := time.Now()

	mock.ExpectExec("UPDATE users SET status").
		WithArgs("u1", model.StatusInactive, updatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.UpdateStatusCAS(ctx, "u1", model.StatusInactive, updatedAt)

	assert.NoError(t, err)
	assert.True(t, applied)

	// updated_at уже не совпадает: запись изменили конкурентно
	mock.ExpectExec("UPDATE users SET status").
		WithArgs("u1", model.StatusInactive, updatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err = repo.UpdateStatusCAS(ctx, "u1", model.StatusInactive, updatedAt)

	assert.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListUsers_NoFilter(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at DESC").
		WithArgs(10, 20).
		WillReturnRows(userRow("u1", "a@example.com"))

	users, total, err := repo.ListUsers(context.Background(), model.UserFilter{}, 20, 10)

	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 25, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListUsers_AllFilters(t *testing.T) {
	repo, mock := newMockRepository(t)

	filter := model.UserFilter{Status: model.StatusActive, Role: model.RoleUser, Search: "иван"}

	mock.ExpectQuery(`SELECT count\(\*\) FROM users WHERE status = \$1 AND role = \$2 AND \(full_name ILIKE \$3 OR email ILIKE \$3\)`).
		WithArgs(model.StatusActive, model.RoleUser, "%иван%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE status (.+) ORDER BY created_at DESC").
		WithArgs(model.StatusActive, model.RoleUser, "%иван%", 10, 0).
		WillReturnRows(userRow("u1", "ivan@example.com"))

	users, total, err := repo.ListUsers(context.Background(), filter, 0, 10)

	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListUsers_SearchEscapesLikeMetacharacters(t *testing.T) {
	repo, mock := newMockRepository(t)

	// "50%_" ищется буквально, а не как шаблон
	mock.ExpectQuery(`SELECT count\(\*\) FROM users WHERE \(full_name ILIKE \$1 OR email ILIKE \$1\)`).
		WithArgs(`%50\%\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE (.+) ORDER BY created_at DESC").
		WithArgs(`%50\%\_%`, 10, 0).
		WillReturnRows(sqlmock.NewRows(userColumns))

	users, total, err := repo.ListUsers(context.Background(), model.UserFilter{Search: "50%_"}, 0, 10)

	assert.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListUsers_EmptyPage(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at DESC").
		WithArgs(10, 90).
		WillReturnRows(sqlmock.NewRows(userColumns))

	users, total, err := repo.ListUsers(context.Background(), model.UserFilter{}, 90, 10)

	assert.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 25, total)
}
