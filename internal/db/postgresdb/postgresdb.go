// Package postgresdb provides the PostgreSQL-backed implementation of
// the storage interface. Profile experience/education sequences and the
// social links sub-object are stored as jsonb documents, skills as a
// text array.
package postgresdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/devconnect/internal/db/storage"
	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the application storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user record and returns the generated ID.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO users (name, email, password_hash, avatar)
				VALUES ($1, $2, $3, $4)
				RETURNING id
		`,
		usr.Name,
		usr.Email,
		usr.PasswordHash,
		usr.Avatar,
	)
	var userIDFromDB string
	if err := row.Scan(&userIDFromDB); err != nil {
		return "", err
	}
	usr.ID = userIDFromDB

	return userIDFromDB, nil
}

// GetUserByID fetches a user by their UUID from the database.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	return db.getUserByField(ctx, "id", userID)
}

// GetUserByEmail fetches a user by their unique email.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return db.getUserByField(ctx, "email", email)
}

func (db *PostgresDB) getUserByField(ctx context.Context, field, value string) (*user.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		fmt.Sprintf(
			`SELECT id, name, email, password_hash, avatar FROM users WHERE %s = $1`,
			field,
		),
		value,
	)
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.PasswordHash, &usr.Avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return usr, nil
}

// DeleteUser removes the user record.
func (db *PostgresDB) DeleteUser(ctx context.Context, userID string) error {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM users WHERE id = $1`,
		userID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// UpsertProfile atomically creates or merges the profile keyed by
// user_id. Status, skills and the social object are always replaced;
// the optional scalar fields only when supplied. Experience and
// education are never touched here.
func (db *PostgresDB) UpsertProfile(ctx context.Context, prof *profile.Profile) (*profile.Profile, error) {
	socialJSON, err := json.Marshal(prof.Social)
	if err != nil {
		return nil, err
	}

	_, err = db.database.ExecContext(
		ctx,
		`
			INSERT INTO profiles
				(user_id, status, skills, social, company, website, location, bio, github_username)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (user_id) DO UPDATE
				SET
					status = EXCLUDED.status,
					skills = EXCLUDED.skills,
					social = EXCLUDED.social,
					company = COALESCE(NULLIF(EXCLUDED.company, ''), profiles.company),
					website = COALESCE(NULLIF(EXCLUDED.website, ''), profiles.website),
					location = COALESCE(NULLIF(EXCLUDED.location, ''), profiles.location),
					bio = COALESCE(NULLIF(EXCLUDED.bio, ''), profiles.bio),
					github_username = COALESCE(NULLIF(EXCLUDED.github_username, ''), profiles.github_username)
		`,
		prof.UserID,
		prof.Status,
		pq.Array(prof.Skills),
		socialJSON,
		prof.Company,
		prof.Website,
		prof.Location,
		prof.Bio,
		prof.GithubUsername,
	)
	if err != nil {
		return nil, err
	}

	return db.GetProfileByUserID(ctx, prof.UserID)
}

// SaveProfile replaces the whole stored document for the profile's user.
func (db *PostgresDB) SaveProfile(ctx context.Context, prof *profile.Profile) error {
	socialJSON, err := json.Marshal(prof.Social)
	if err != nil {
		return err
	}
	experienceJSON, err := json.Marshal(prof.Experience)
	if err != nil {
		return err
	}
	educationJSON, err := json.Marshal(prof.Education)
	if err != nil {
		return err
	}

	result, err := db.database.ExecContext(
		ctx,
		`
			UPDATE profiles
				SET
					status = $2,
					skills = $3,
					social = $4,
					company = $5,
					website = $6,
					location = $7,
					bio = $8,
					github_username = $9,
					experience = $10,
					education = $11
				WHERE user_id = $1
		`,
		prof.UserID,
		prof.Status,
		pq.Array(prof.Skills),
		socialJSON,
		prof.Company,
		prof.Website,
		prof.Location,
		prof.Bio,
		prof.GithubUsername,
		experienceJSON,
		educationJSON,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

const profileSelect = `
	SELECT
		profiles.user_id,
		profiles.status,
		profiles.skills,
		profiles.social,
		profiles.company,
		profiles.website,
		profiles.location,
		profiles.bio,
		profiles.github_username,
		profiles.experience,
		profiles.education,
		users.name,
		users.avatar
	FROM profiles
		JOIN users ON users.id = profiles.user_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfileRow(row rowScanner) (*profile.Profile, error) {
	prof := &profile.Profile{}
	var skills pq.StringArray
	var socialJSON, experienceJSON, educationJSON []byte
	err := row.Scan(
		&prof.UserID,
		&prof.Status,
		&skills,
		&socialJSON,
		&prof.Company,
		&prof.Website,
		&prof.Location,
		&prof.Bio,
		&prof.GithubUsername,
		&experienceJSON,
		&educationJSON,
		&prof.User.Name,
		&prof.User.Avatar,
	)
	if err != nil {
		return nil, err
	}

	prof.Skills = []string(skills)
	if prof.Skills == nil {
		prof.Skills = []string{}
	}
	prof.User.ID = prof.UserID

	if err := json.Unmarshal(socialJSON, &prof.Social); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(experienceJSON, &prof.Experience); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(educationJSON, &prof.Education); err != nil {
		return nil, err
	}
	if prof.Experience == nil {
		prof.Experience = []profile.Experience{}
	}
	if prof.Education == nil {
		prof.Education = []profile.Education{}
	}

	return prof, nil
}

// GetProfileByUserID fetches the profile joined with the owner's public fields.
func (db *PostgresDB) GetProfileByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	row := db.database.QueryRowContext(
		ctx,
		profileSelect+` WHERE profiles.user_id = $1`,
		userID,
	)
	prof, err := scanProfileRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return prof, nil
}

// ListProfiles returns every profile joined with the owner's public fields.
func (db *PostgresDB) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	rows, err := db.database.QueryContext(ctx, profileSelect+` ORDER BY profiles.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []profile.Profile{}
	for rows.Next() {
		prof, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *prof)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteProfileByUserID removes the profile of the given user.
// Deleting an absent profile is not an error.
func (db *PostgresDB) DeleteProfileByUserID(ctx context.Context, userID string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM profiles WHERE user_id = $1`,
		userID,
	)

	return err
}

// CreatePost inserts a new post record and returns the generated ID.
func (db *PostgresDB) CreatePost(ctx context.Context, pst *post.Post) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO posts (user_id, text, name, avatar, created_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
		`,
		pst.UserID,
		pst.Text,
		pst.Name,
		pst.Avatar,
		pst.CreatedAt,
	)
	var postIDFromDB string
	if err := row.Scan(&postIDFromDB); err != nil {
		return "", err
	}
	pst.ID = postIDFromDB

	return postIDFromDB, nil
}

// GetPostByID fetches a post by its UUID.
func (db *PostgresDB) GetPostByID(ctx context.Context, postID string) (*post.Post, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, user_id, text, name, avatar, created_at FROM posts WHERE id = $1`,
		postID,
	)
	pst := &post.Post{}
	err := row.Scan(&pst.ID, &pst.UserID, &pst.Text, &pst.Name, &pst.Avatar, &pst.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return pst, nil
}

// ListPosts returns every post, newest first.
func (db *PostgresDB) ListPosts(ctx context.Context) ([]post.Post, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, user_id, text, name, avatar, created_at FROM posts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []post.Post{}
	for rows.Next() {
		pst := post.Post{}
		err := rows.Scan(&pst.ID, &pst.UserID, &pst.Text, &pst.Name, &pst.Avatar, &pst.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, pst)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeletePost removes a post by ID.
func (db *PostgresDB) DeletePost(ctx context.Context, postID string) error {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM posts WHERE id = $1`,
		postID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeletePostsByUser removes every post owned by the given user.
func (db *PostgresDB) DeletePostsByUser(ctx context.Context, userID string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM posts WHERE user_id = $1`,
		userID,
	)

	return err
}

// GetNumberOfUsers returns the total amount of registered users.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM users`)
}

// GetNumberOfProfiles returns the total amount of stored profiles.
func (db *PostgresDB) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM profiles`)
}

func (db *PostgresDB) countRows(ctx context.Context, query string) (int64, error) {
	row := db.database.QueryRowContext(ctx, query)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}

	return nil
}
