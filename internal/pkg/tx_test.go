package pkg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
)

type testItem struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex"`
}

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&testItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func countItems(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&testItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestWithTx_CommitOnSuccess(t *testing.T) {
	db := newTxTestDB(t)

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&testItem{Name: "alice"}).Error
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if n := countItems(t, db); n != 1 {
		t.Fatalf("expected 1 row after commit, got %d", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := newTxTestDB(t)

	fnErr := errors.New("something went wrong")
	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&testItem{Name: "bob"}).Error; err != nil {
			t.Fatalf("insert should succeed: %v", err)
		}
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if n := countItems(t, db); n != 0 {
		t.Fatalf("expected 0 rows after rollback, got %d", n)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := newTxTestDB(t)

	defer func() {
		r := recover()
		if r != "kaboom" {
			t.Fatalf("expected panic value 'kaboom', got %v", r)
		}
		if n := countItems(t, db); n != 0 {
			t.Fatalf("expected 0 rows after panic rollback, got %d", n)
		}
	}()

	_ = WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&testItem{Name: "charlie"}).Error; err != nil {
			t.Fatalf("insert should succeed: %v", err)
		}
		panic("kaboom")
	})
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := newTxTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTx(ctx, db, func(tx *gorm.DB) error {
		t.Fatal("fn should not run when Begin fails")
		return nil
	})
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestMapDBError(t *testing.T) {
	db := newTxTestDB(t)
	if err := db.Create(&testItem{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	dupErr := db.Create(&testItem{Name: "dup"}).Error

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", gorm.ErrRecordNotFound, domain.IsNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), domain.IsNotFound},
		{"duplicate", dupErr, domain.IsAlreadyExists},
		{"app error passes through", domain.NewAppError(domain.CodeValidation, "bad", nil), domain.IsValidation},
		{"other", errors.New("disk full"), domain.IsInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapDBError(tt.err); !tt.check(got) {
				t.Errorf("MapDBError(%v) = %v", tt.err, got)
			}
		})
	}
	if MapDBError(nil) != nil {
		t.Error("MapDBError(nil) should be nil")
	}
}
