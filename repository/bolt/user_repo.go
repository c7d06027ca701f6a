package bolt

import (
	"context"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// storedUser persists the password hash that domain.User hides from JSON.
type storedUser struct {
	User         domain.User `json:"user"`
	PasswordHash []byte      `json:"password_hash"`
}

func (s storedUser) toDomain() *domain.User {
	user := s.User
	user.PasswordHash = s.PasswordHash
	return &user
}

type userRepository struct {
	db *bolt.DB
}

func NewUserRepository(db *bolt.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		rec, err := getRecord[storedUser](tx.Bucket([]byte(BucketUsers)), id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrUserNotFound, "user %s", id)
		}
		user = rec.Entity.toDomain()
		return nil
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(BucketUserByEmail)).Get([]byte(emailKey(email)))
		if id == nil {
			return domain.Wrapf(domain.ErrUserNotFound, "email %s", email)
		}
		rec, err := getRecord[storedUser](tx.Bucket([]byte(BucketUsers)), string(id))
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrUserNotFound, "email %s", email)
		}
		user = rec.Entity.toDomain()
		return nil
	})
	return user, err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket([]byte(BucketUsers))
		index := tx.Bucket([]byte(BucketUserByEmail))
		key := []byte(emailKey(user.Email))
		if index.Get(key) != nil {
			return domain.Wrapf(domain.ErrUserExists, "email %s", user.Email)
		}
		if users.Get([]byte(user.ID)) != nil {
			return domain.Wrapf(domain.ErrDuplicateID, "user %s", user.ID)
		}
		seq, err := users.NextSequence()
		if err != nil {
			return err
		}
		rec := record[storedUser]{Seq: seq, Entity: storedUser{User: *user, PasswordHash: user.PasswordHash}}
		if err := putRecord(users, user.ID, rec); err != nil {
			return err
		}
		return index.Put(key, []byte(user.ID))
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket([]byte(BucketUsers))
		index := tx.Bucket([]byte(BucketUserByEmail))
		rec, err := getRecord[storedUser](users, user.ID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.Wrapf(domain.ErrUserNotFound, "user %s", user.ID)
		}
		oldKey, newKey := emailKey(rec.Entity.User.Email), emailKey(user.Email)
		if oldKey != newKey {
			if index.Get([]byte(newKey)) != nil {
				return domain.Wrapf(domain.ErrUserExists, "email %s", user.Email)
			}
			if err := index.Delete([]byte(oldKey)); err != nil {
				return err
			}
			if err := index.Put([]byte(newKey), []byte(user.ID)); err != nil {
				return err
			}
		}
		rec.Entity = storedUser{User: *user, PasswordHash: user.PasswordHash}
		return putRecord(users, user.ID, *rec)
	})
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
