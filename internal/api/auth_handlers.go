package api

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/railbook/railbook_core/internal/config"
	"github.com/railbook/railbook_core/internal/db"
	"github.com/railbook/railbook_core/internal/middleware"
	"github.com/railbook/railbook_core/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Signup returns the handler for POST /api/auth/signup. New accounts
// always start with the user role; admins are promoted out of band.
func Signup(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentials
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || !strings.Contains(body.Email, "@") {
			return c.Status(400).JSON(fiber.Map{"error": "a valid email is required"})
		}
		if len(body.Password) < 8 {
			return c.Status(400).JSON(fiber.Map{"error": "password must be at least 8 characters"})
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Password hash error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		pool, err := db.GetDB()
		if err != nil {
			log.Printf("Database error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		_, err = pool.Exec(c.Context(), `
			INSERT INTO users (email, name, password_hash, role)
			VALUES ($1, $2, $3, $4)
		`, body.Email, body.Name, string(hash), middleware.RoleUser)
		if err != nil {
			if isUniqueViolation(err) {
				return c.Status(409).JSON(fiber.Map{"error": "account already exists"})
			}
			log.Printf("User insert error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		token, err := middleware.IssueToken(cfg.JWTSecret, body.Email, middleware.RoleUser, cfg.TokenTTL)
		if err != nil {
			log.Printf("Token issue error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		return c.Status(201).JSON(fiber.Map{
			"email": body.Email,
			"role":  middleware.RoleUser,
			"token": token,
		})
	}
}

// Login returns the handler for POST /api/auth/login. Unknown accounts
// and wrong passwords get the same answer.
func Login(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentials
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return c.Status(400).JSON(fiber.Map{"error": "email and password are required"})
		}

		pool, err := db.GetDB()
		if err != nil {
			log.Printf("Database error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		var user models.User
		err = pool.QueryRow(c.Context(), `
			SELECT email, name, password_hash, role FROM users WHERE email = $1
		`, body.Email).Scan(&user.Email, &user.Name, &user.PasswordHash, &user.Role)
		if err != nil {
			if isNoRows(err) {
				return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
			}
			log.Printf("User query error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
		}

		token, err := middleware.IssueToken(cfg.JWTSecret, user.Email, user.Role, cfg.TokenTTL)
		if err != nil {
			log.Printf("Token issue error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
		}

		return c.JSON(fiber.Map{
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
			"token": token,
		})
	}
}

// Me handles GET /api/auth/me for an authenticated user
func Me(c *fiber.Ctx) error {
	claims, ok := middleware.UserFromContext(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Printf("Database error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	var user models.User
	err = pool.QueryRow(c.Context(), `
		SELECT email, name, role FROM users WHERE email = $1
	`, claims.Email).Scan(&user.Email, &user.Name, &user.Role)
	if err != nil {
		if isNoRows(err) {
			return c.Status(404).JSON(fiber.Map{"error": "account not found"})
		}
		log.Printf("User query error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(user)
}
