package main

import (
	"context"
	"coursemaster/config"
	"coursemaster/database"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/services"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the admin account from ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME and
// optionally imports a course catalog:
//
//	go run ./scripts -courses courses.csv
//
// CSV headers: title,description,price,currency,category,tags,instructor_email,lessons
// tags and lessons are "|" separated.
func main() {
	coursesFile := flag.String("courses", "", "CSV file with courses to import")
	flag.Parse()

	cfg := config.Load()
	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.ConnectDb(cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	admin, err := seedAdmin(db, cfg.SaltRound)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Printf("Admin ready: %s (id=%d)", admin.Email, admin.ID)

	if *coursesFile == "" {
		return
	}
	importCourses(db, services.NewCourseService(db, appLog), admin, *coursesFile)
}

func seedAdmin(db *gorm.DB, saltRound int) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	name := strings.TrimSpace(os.Getenv("ADMIN_NAME"))
	if email == "" || len(password) < services.MinPasswordLength {
		return nil, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD (min 6 chars) are required")
	}
	if name == "" {
		name = "Administrator"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), saltRound)
	if err != nil {
		return nil, err
	}

	var admin models.User
	err = db.Where("email = ?", email).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = models.User{Name: name, Email: email, Password: string(hash), Role: models.RoleAdmin, IsActive: true}
		return &admin, db.Create(&admin).Error
	case err != nil:
		return nil, err
	}

	admin.Name = name
	admin.Password = string(hash)
	admin.Role = models.RoleAdmin
	admin.IsActive = true
	return &admin, db.Save(&admin).Error
}

func importCourses(db *gorm.DB, courses *services.CourseService, admin *models.User, path string) {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	ctx := context.Background()
	inserted, updated, skipped := 0, 0, 0
	instructors := map[string]uint{}

	for i, row := range records[1:] {
		in, email, err := courseFromRow(row, headerIndex)
		if err != nil {
			log.Printf("Row %d: %v, skipping", i+2, err)
			skipped++
			continue
		}

		ownerID := admin.ID
		if email != "" {
			id, ok := instructors[email]
			if !ok {
				var instructor models.User
				if err := db.Where("email = ? AND role = ?", email, models.RoleInstructor).First(&instructor).Error; err != nil {
					log.Printf("Row %d: instructor %s not found, skipping", i+2, email)
					skipped++
					continue
				}
				id = instructor.ID
				instructors[email] = id
			}
			ownerID = id
		}
		in.InstructorID = &ownerID

		var existing models.Course
		err = db.Where("title = ? AND instructor_id = ?", in.Title, ownerID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, err := courses.Create(ctx, admin.ID, models.RoleAdmin, in); err != nil {
				log.Printf("Row %d: error inserting course %q: %v", i+2, in.Title, err)
				skipped++
				continue
			}
			inserted++
			continue
		}
		if err != nil {
			log.Printf("Row %d: lookup failed: %v", i+2, err)
			skipped++
			continue
		}

		if _, err := courses.Update(ctx, admin.ID, models.RoleAdmin, existing.ID, in); err != nil {
			log.Printf("Row %d: error updating course %q: %v", i+2, in.Title, err)
			skipped++
			continue
		}
		updated++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Updated: %d", updated)
	log.Printf("Skipped: %d", skipped)
}

// courseFromRow maps one CSV record to a course input and the owning instructor's email
func courseFromRow(row []string, headerIndex map[string]int) (services.CourseInput, string, error) {
	in := services.CourseInput{
		Title:       getField(row, headerIndex, "title"),
		Description: getField(row, headerIndex, "description"),
		Currency:    strings.ToUpper(getField(row, headerIndex, "currency")),
		Category:    getField(row, headerIndex, "category"),
		Tags:        splitList(getField(row, headerIndex, "tags")),
	}
	if in.Title == "" {
		return in, "", errors.New("missing title")
	}

	price, err := parseFloat(getField(row, headerIndex, "price"))
	if err != nil {
		return in, "", fmt.Errorf("invalid price: %w", err)
	}
	in.Price = price

	for _, title := range splitList(getField(row, headerIndex, "lessons")) {
		in.Lessons = append(in.Lessons, services.LessonInput{Title: title})
	}
	return in, strings.ToLower(getField(row, headerIndex, "instructor_email")), nil
}

func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseFloat treats an empty cell as zero
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if val < 0 {
		return 0, fmt.Errorf("negative value %v", val)
	}
	return val, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
