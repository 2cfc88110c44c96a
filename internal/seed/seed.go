// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password assigned to every seeded user.
const DefaultPassword = "Password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumComments int
	ShouldClean bool
}

// Seeder populates the database with fake users, posts and comments.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seedable rows. Comments go first to respect foreign
// keys.
func (s *Seeder) ClearAll() error {
	log.Println("Cleaning database...")
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Post{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clean table: %w", err)
		}
	}
	return nil
}

// SeedUsers creates n users with unique nicknames and the default password.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		nickname := gofakeit.Username()
		if len(nickname) > 25 {
			nickname = nickname[:25]
		}
		// gofakeit usernames can collide; suffix with the index.
		nickname = fmt.Sprintf("%s%d", nickname, i)

		user := &models.User{
			Nickname: nickname,
			Password: string(hashed),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %q: %w", nickname, err)
		}
		users = append(users, user)
	}

	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread across the given users with a realistic
// created_at spread over the last 90 days.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to attach posts to")
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		post := &models.Post{
			Title:     gofakeit.Sentence(5),
			Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
			UserID:    author.ID,
			CreatedAt: s.pastTimestamp(90),
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}

	log.Printf("Created %d posts", len(posts))
	return posts, nil
}

// SeedComments creates n comments spread across the given users and posts.
func (s *Seeder) SeedComments(users []*models.User, posts []*models.Post, n int) error {
	if len(users) == 0 || len(posts) == 0 {
		return fmt.Errorf("no users or posts to attach comments to")
	}

	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		post := posts[s.rand.Intn(len(posts))]
		comment := &models.Comment{
			Content:   gofakeit.Sentence(s.rand.Intn(15) + 3),
			UserID:    author.ID,
			PostID:    post.ID,
			CreatedAt: s.pastTimestamp(30),
		}
		if err := s.db.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}

	log.Printf("Created %d comments", n)
	return nil
}

// Run executes the full seeding pass described by opts.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}

	posts, err := s.SeedPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}

	return s.SeedComments(users, posts, opts.NumComments)
}

func (s *Seeder) pastTimestamp(maxDays int) time.Time {
	daysBack := s.rand.Intn(maxDays)
	hoursBack := s.rand.Intn(24)
	minsBack := s.rand.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack) * 24 * time.Hour).
		Add(-time.Duration(hoursBack) * time.Hour).
		Add(-time.Duration(minsBack) * time.Minute)
}
