package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/utils"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
}

type UserInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=student instructor admin"`
	IsActive *bool  `json:"is_active"`
}

// UserFilter narrows the admin user list
type UserFilter struct {
	Search string
	Role   string
	Active *bool
}

// UserDetails is a user with everything they own on the platform
type UserDetails struct {
	User         models.User          `json:"user"`
	Enrollments  []models.Enrollment  `json:"enrollments"`
	Orders       []models.Order       `json:"orders"`
	Submissions  []models.Submission  `json:"submissions"`
	QuizAttempts []models.QuizAttempt `json:"quiz_attempts"`
}

type UserService struct {
	db        *gorm.DB
	log       *logger.Logger
	notifier  utils.Notifier
	saltRound int
	now       func() time.Time
}

func NewUserService(db *gorm.DB, log *logger.Logger, notifier utils.Notifier, saltRound int) *UserService {
	if saltRound < bcrypt.MinCost {
		saltRound = bcrypt.DefaultCost
	}
	return &UserService{db: db, log: log, notifier: notifier, saltRound: saltRound, now: time.Now}
}

// Register creates a self-service account. Admin accounts cannot be self-registered.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleInstructor {
		return nil, apperr.Validation(map[string]string{"role": "Role must be student or instructor!"})
	}

	user := &models.User{
		Name:     in.Name,
		Email:    normalizeEmail(in.Email),
		Role:     role,
		IsActive: true,
	}
	if err := s.create(ctx, user, in.Password); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID, "role", role)
	s.notifier.SendWelcomeEmail(user.Email, user.Name)
	return user, nil
}

// Login checks the credentials and stamps last_login_at
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials!")
		}
		return nil, apperr.Wrap(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials!")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("Your account has been deactivated!")
	}

	now := s.now()
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		s.log.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Wrap(err, "load user")
	}
	return &user, nil
}

// Active loads a user and rejects deactivated accounts
func (s *UserService) Active(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("User no longer exists!")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("Your account has been deactivated!")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, f UserFilter, p utils.Pagination) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count users")
	}
	users := []models.User{}
	if err := query.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list users")
	}
	return users, total, nil
}

func (s *UserService) Details(ctx context.Context, userID uint) (*UserDetails, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	details := &UserDetails{
		User:         *user,
		Enrollments:  []models.Enrollment{},
		Orders:       []models.Order{},
		Submissions:  []models.Submission{},
		QuizAttempts: []models.QuizAttempt{},
	}
	if err := db.Preload("Course").Where("student_id = ?", userID).Order("enrolled_at DESC").Find(&details.Enrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "load enrollments")
	}
	if err := db.Preload("Course").Where("user_id = ?", userID).Order("created_at DESC").Find(&details.Orders).Error; err != nil {
		return nil, apperr.Wrap(err, "load orders")
	}
	if err := db.Preload("Assignment").Where("student_id = ?", userID).Order("submitted_at DESC").Find(&details.Submissions).Error; err != nil {
		return nil, apperr.Wrap(err, "load submissions")
	}
	if err := db.Where("student_id = ?", userID).Order("attempted_at DESC").Find(&details.QuizAttempts).Error; err != nil {
		return nil, apperr.Wrap(err, "load quiz attempts")
	}
	return details, nil
}

// Create adds a user on behalf of an admin. Any role is allowed.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Password == "" {
		return nil, apperr.Validation(map[string]string{"password": "Password is required!"})
	}
	user := &models.User{
		Name:     in.Name,
		Email:    normalizeEmail(in.Email),
		Role:     in.Role,
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := s.create(ctx, user, in.Password); err != nil {
		return nil, err
	}
	s.log.Info("user created by admin", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Update changes profile fields, role and status. A password in the input is ignored;
// use ResetPassword for that.
func (s *UserService) Update(ctx context.Context, callerID, userID uint, in UserInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if callerID == userID && (in.Role != models.RoleAdmin || (in.IsActive != nil && !*in.IsActive)) {
		return nil, apperr.BadRequest("You cannot demote or deactivate your own account")
	}

	updates := map[string]interface{}{
		"name":  in.Name,
		"email": normalizeEmail(in.Email),
		"role":  in.Role,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email is already registered!")
		}
		return nil, apperr.Wrap(err, "update user")
	}
	return s.Get(ctx, userID)
}

// Delete removes a user together with their orders. Users that still hold
// enrollments or own courses are refused.
func (s *UserService) Delete(ctx context.Context, callerID, userID uint) error {
	if callerID == userID {
		return apperr.BadRequest("You cannot delete your own account")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("User not found")
			}
			return apperr.Wrap(err, "load user")
		}

		var enrolled int64
		if err := tx.Model(&models.Enrollment{}).Where("student_id = ?", userID).Count(&enrolled).Error; err != nil {
			return apperr.Wrap(err, "count enrollments")
		}
		if enrolled > 0 {
			return apperr.Conflict("Cannot delete a user with active enrollments")
		}

		var owned int64
		if err := tx.Model(&models.Course{}).Where("instructor_id = ?", userID).Count(&owned).Error; err != nil {
			return apperr.Wrap(err, "count courses")
		}
		if owned > 0 {
			return apperr.Conflict("Cannot delete an instructor who owns courses")
		}

		tx = tx.Unscoped().Session(&gorm.Session{})
		if err := tx.Where("user_id = ?", userID).Delete(&models.Order{}).Error; err != nil {
			return apperr.Wrap(err, "delete orders")
		}
		if err := tx.Where("student_id = ?", userID).Delete(&models.Submission{}).Error; err != nil {
			return apperr.Wrap(err, "delete submissions")
		}
		if err := tx.Where("student_id = ?", userID).Delete(&models.QuizAttempt{}).Error; err != nil {
			return apperr.Wrap(err, "delete quiz attempts")
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.LoginHistory{}).Error; err != nil {
			return apperr.Wrap(err, "delete login history")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return apperr.Wrap(err, "delete user")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", userID, "by", callerID)
	return nil
}

// RecordLogin stores a sign-in. Failures are logged and never block the login.
func (s *UserService) RecordLogin(ctx context.Context, userID uint, ip, device string) {
	entry := &models.LoginHistory{
		UserID:     userID,
		IPAddress:  ip,
		Device:     truncateDevice(device),
		LoggedInAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.log.Warn("failed to record login", "user_id", userID, "error", err)
	}
}

// LoginHistory lists a user's sign-ins, newest first
func (s *UserService) LoginHistory(ctx context.Context, userID uint, p utils.Pagination) ([]models.LoginHistory, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.LoginHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count login history")
	}
	var entries []models.LoginHistory
	if err := query.Order("logged_in_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&entries).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list login history")
	}
	return entries, total, nil
}

func (s *UserService) ResetPassword(ctx context.Context, userID uint, password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation(map[string]string{"password": "Password must be at least 6 characters!"})
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.saltRound)
	if err != nil {
		return apperr.Wrap(err, "hash password")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", string(hash)).Error; err != nil {
		return apperr.Wrap(err, "update password")
	}
	s.log.Info("password reset", "user_id", userID)
	return nil
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.saltRound)
	if err != nil {
		return apperr.Wrap(err, "hash password")
	}
	user.Password = string(hash)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("Email is already registered!")
		}
		return apperr.Wrap(err, "create user")
	}
	return nil
}

const maxDeviceLength = 255

func truncateDevice(device string) string {
	if len(device) > maxDeviceLength {
		return device[:maxDeviceLength]
	}
	return device
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
