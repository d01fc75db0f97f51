package api

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/sparsh1616/MedHistoryApp/auth"
	"github.com/sparsh1616/MedHistoryApp/domain"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Register creates a new student account.
// POST /api/auth/register
func (h *Handler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var body struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		Email     string `json:"email"`
		FullName  string `json:"full_name"`
		StudyYear string `json:"study_year"`
		Institute string `json:"institute"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body."})
	}
	if body.Username == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Username and password are required."})
	}
	if body.Email != "" && !emailPattern.MatchString(body.Email) {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid email format."})
	}

	// Username check is case-insensitive
	if existing, err := h.store.GetUserByUsername(ctx, body.Username); err != nil {
		log.WithError(err).Error("failed to check username")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during registration."})
	} else if existing != nil {
		return c.JSON(http.StatusConflict, messageResponse{Message: "Username already exists."})
	}
	if body.Email != "" {
		if existing, err := h.store.GetUserByEmail(ctx, body.Email); err != nil {
			log.WithError(err).Error("failed to check email")
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during registration."})
		} else if existing != nil {
			return c.JSON(http.StatusConflict, messageResponse{Message: "Email address already in use."})
		}
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		log.WithError(err).Error("failed to hash password")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during registration."})
	}

	user := &domain.User{
		Username:     body.Username,
		PasswordHash: hash,
		Email:        body.Email,
		FullName:     body.FullName,
		StudyYear:    body.StudyYear,
		Institute:    body.Institute,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		log.WithError(err).Error("failed to create user")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during registration."})
	}

	log.WithField("username", user.Username).Info("user registered")
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully."})
}

// Login authenticates a student and issues a bearer token.
// POST /api/auth/login
func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body."})
	}
	if body.Username == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Username and password are required."})
	}

	user, err := h.store.GetUserByUsername(ctx, body.Username)
	if err != nil {
		log.WithError(err).Error("failed to look up user")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during login."})
	}
	// Same response for unknown user and wrong password
	if user == nil || !auth.CheckPassword(user.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid credentials."})
	}

	token, err := h.jwt.Generate(user.ID, user.Username)
	if err != nil {
		log.WithError(err).Error("failed to sign token")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during login."})
	}

	log.WithField("username", user.Username).Info("user logged in")
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Login successful.",
		"token":   token,
	})
}
