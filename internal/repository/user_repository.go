package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"user-management-server/config"
	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/util"
)

const pqUniqueViolation = "23505"

// likeEscaper экранирует метасимволы LIKE/ILIKE, чтобы поиск по
// подстроке вида "50%" или "a_b" работал буквально
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя.
// Уникальность email обеспечивает индекс по lower(email); проигранная
// гонка вставки превращается в apperrors.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, full_name, password_hash, role, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING uuid, email, full_name, password_hash, role, status, created_at, updated_at, last_login
	`

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID, user.Email, user.FullName, user.PasswordHash, user.Role, user.Status,
	).StructScan(createdUser)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, apperrors.ErrConflict
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, full_name, password_hash, role, status, created_at, updated_at, last_login
	FROM users WHERE uuid = $1`

	var user model.User
	err := r.DB.GetContext(ctx, &user, query, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByEmail : ищет пользователя по email без учёта регистра
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, full_name, password_hash, role, status, created_at, updated_at, last_login
	FROM users WHERE lower(email) = lower($1)`

	var user model.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}
	return &user, nil
}

// EmailTaken : занят ли email другим пользователем.
// excludeUUID исключает собственную запись при обновлении профиля;
// пустое значение нельзя подставлять в сравнение с колонкой типа uuid,
// поэтому для регистрации выполняется запрос без исключения.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeUUID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	args := []interface{}{email}

	if excludeUUID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND uuid <> $2)`
		args = append(args, excludeUUID)
	}

	var taken bool
	err := r.DB.GetContext(ctx, &taken, query, args...)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки занятости email", err)
	}
	return taken, nil
}

// UpdateProfile : обновляет имя и email, возвращает обновлённую запись
func (r *UserRepository) UpdateProfile(ctx context.Context, uuid, fullName, email string) (*model.User, error) {
	query := `
	UPDATE users SET full_name = $2, email = $3, updated_at = now()
	WHERE uuid = $1
	RETURNING uuid, email, full_name, password_hash, role, status, created_at, updated_at, last_login
	`

	updatedUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query, uuid, fullName, email).StructScan(updatedUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, apperrors.ErrConflict
		}
		return nil, util.LogError("[UserRepo] не удалось обновить профиль", err)
	}
	return updatedUser, nil
}

// UpdatePassword : меняет хэш пароля пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE uuid = $1`

	result, err := r.DB.ExecContext(ctx, query, uuid, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateLastLogin : фиксирует момент успешного входа
func (r *UserRepository) UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error {
	query := `UPDATE users SET last_login = $2 WHERE uuid = $1`

	_, err := r.DB.ExecContext(ctx, query, uuid, at)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить last_login", err)
	}
	return nil
}

// UpdateStatusCAS : смена статуса через compare-and-set по updated_at,
// чтобы конкурентные действия администраторов не терялись молча.
// false означает, что запись успела измениться.
func (r *UserRepository) UpdateStatusCAS(ctx context.Context, uuid, status string, expectedUpdatedAt time.Time) (bool, error) {
	query := `UPDATE users SET status = $2, updated_at = now() WHERE uuid = $1 AND updated_at = $3`

	result, err := r.DB.ExecContext(ctx, query, uuid, status, expectedUpdatedAt)
	if err != nil {
		return false, util.LogError("[UserRepo] не удалось обновить статус", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[UserRepo] не удалось проверить, обновлён ли статус", err)
	}

	return affected > 0, nil
}

// ListUsers : административная выборка с offset-пагинацией.
// Фильтры объединяются по AND, пустые значения игнорируются, поиск -
// подстрока по имени или email без учёта регистра.
func (r *UserRepository) ListUsers(ctx context.Context, filter model.UserFilter, offset, limit int) ([]*model.User, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLikePattern(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT count(*) FROM users` + where

	var total int
	if err := r.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, util.LogError("[UserRepo] не удалось посчитать пользователей", err)
	}

	listQuery := `SELECT uuid, email, full_name, password_hash, role, status, created_at, updated_at, last_login
	FROM users` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	users := []*model.User{}
	if err := r.DB.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, util.LogError("[UserRepo] не удалось получить список пользователей", err)
	}

	return users, total, nil
}
