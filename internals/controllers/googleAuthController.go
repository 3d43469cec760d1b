package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"gin-shop/internals/config"
	"gin-shop/internals/models"
	"gin-shop/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

// GoogleAuthController handles only Google-specific OAuth logic
type GoogleAuthController struct {
	DB           *gorm.DB
	Config       *oauth2.Config
	TokenManager *utils.TokenManager
	Logger       *zap.Logger
}

// NewGoogleAuthController initializes the config once at startup
func NewGoogleAuthController(db *gorm.DB, tokenManager *utils.TokenManager, logger *zap.Logger) *GoogleAuthController {
	return &GoogleAuthController{
		DB: db,
		Config: &oauth2.Config{
			ClientID:     config.GetEnv("GOOGLE_CLIENT_ID"),
			ClientSecret: config.GetEnv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  config.GetEnv("GOOGLE_REDIRECT_URL"),
			Endpoint:     google.Endpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		},
		TokenManager: tokenManager,
		Logger:       logger,
	}
}

// Login redirects the user to Google's consent page
func (g *GoogleAuthController) Login(c *gin.Context) {
	// In production, generate a random string and save it in a cookie/session
	state := "random-state-string"
	url := g.Config.AuthCodeURL(state)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// Callback handles the callback from Google. Accounts created here are
// verified from the start: Google already owns the address.
func (g *GoogleAuthController) Callback(c *gin.Context) {
	code := c.Query("code")

	token, err := g.Config.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange token"})
		return
	}

	response, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}
	defer response.Body.Close()

	var googleUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read user info"})
		return
	}

	email, err := models.NormalizeEmail(googleUser.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google account has no usable email"})
		return
	}

	var user models.User
	g.DB.Where("email = ?", email).First(&user)

	if user.ID == 0 {
		user = models.User{
			Name:          googleUser.Name,
			Email:         email,
			Active:        true,
			EmailVerified: true,
			GoogleID:      googleUser.ID,
		}
		if err := g.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account is blocked. Please contact an administrator."})
		return
	}

	finishLogin(c, g.DB, g.TokenManager, g.Logger, &user, false, "")
}
