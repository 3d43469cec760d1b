package routes

import (
	"gin-shop/internals/config"
	"gin-shop/internals/controllers"
	"gin-shop/internals/middleware"
	"gin-shop/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.Default()

	appName := config.GetEnvAsStr("APP_NAME", "Gin-Shop")
	secretKey := config.GetEnv("SECRET_KEY")
	encryptionKey := config.GetEnv("ENCRYPTION_KEY")

	emailManager := utils.NewEmailManager(
		&utils.SMTPConfig{
			Host:          config.GetEnvAsStr("SMTP_HOST", "smtp.gmail.com"),
			Port:          config.GetEnvAsInt("SMTP_PORT", 587, true),
			User:          config.GetEnv("SMTP_USER"),
			Password:      config.GetEnv("SMTP_PASSWORD"),
			AppName:       appName,
			BaseURL:       config.GetEnvAsStr("APP_BASE_URL", "http://localhost:8080"),
			MessageIDHost: config.GetEnvAsStr("APP_MTA_MESSAGEID", "localhost"),
			LinkExp:       int(utils.DefaultActionTokenTTL.Minutes()),
		},
	)

	tokenManager := utils.NewTokenManager(
		db,
		&config.CookieConfig{
			Domain:   config.GetEnvAsStr("DOMAIN", ""),
			IsSecure: config.GetEnvAsStr("SECURE_COOKIE", "true") == "true",
			HttpOnly: true,
		},
		secretKey,
		config.GetEnvAsInt("ACCESS_TOKEN_EXPIRATION_SECONDS", 900, true),
		config.GetEnvAsInt("REFRESH_TOKEN_EXPIRATION_SECONDS", 86400, true),
		config.GetEnvAsInt("REMEMBER_ME_EXPIRATION_SECONDS", 2592000, true),
		config.GetEnvAsInt("LOGIN_CHALLENGE_EXPIRATION_SECONDS", 300, true),
		config.GetEnvAsStr("ACCESS_TOKEN_PATH", ""),
		config.GetEnvAsStr("REFRESH_TOKEN_PATH", "/auth/refresh"),
	)

	actionTokens := utils.NewActionTokenManager(db, secretKey, logger)
	policy := config.PasswordPolicyFromEnv()

	authMiddleware := middleware.NewRequireAuthMiddleware(db, secretKey)
	authCtrl := controllers.NewAuthController(db, emailManager, tokenManager, actionTokens, policy, logger)
	verifyCtrl := controllers.NewVerificationController(db, emailManager, actionTokens, logger)
	mfaCtrl := controllers.NewMFAController(db, tokenManager, appName, encryptionKey, logger)
	tokenCtrl := controllers.NewTokenController(db, tokenManager, logger)
	googleAuthCtrl := controllers.NewGoogleAuthController(db, tokenManager, logger)
	categoryCtrl := controllers.NewCategoryController(db, logger)
	productCtrl := controllers.NewProductController(db, logger)

	public := r.Group("/")
	{
		public.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "active",
				"message": appName + " API is running",
			})
		})

		public.POST("/signup", authCtrl.Signup)
		public.GET("/verify-email/:token", verifyCtrl.VerifyEmail)
		public.POST("/resend-verification", verifyCtrl.ResendVerification)

		public.POST("/login", authCtrl.Login)
		public.POST("/2fa/login-verify", mfaCtrl.LoginVerify2FA)

		public.POST("/forgot-password", authCtrl.ForgotPassword)
		public.POST("/reset-password/:token", authCtrl.ResetPassword)

		// Catalog browsing is open; mutations require a session
		public.GET("/categories", categoryCtrl.List)
		public.GET("/products", productCtrl.List)
		public.GET("/products/:id", productCtrl.Get)
		public.GET("/products/:id/image", productCtrl.Image)
		public.GET("/products/:id/thumbnail", productCtrl.Thumbnail)
	}

	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth)
	{
		protected.POST("/logout", authCtrl.Logout)
		protected.GET("/validate", tokenCtrl.Validate)

		protected.POST("/2fa/setup", mfaCtrl.Setup2FA)
		protected.POST("/2fa/activate", mfaCtrl.Activate2FA)
		protected.POST("/2fa/disable", mfaCtrl.Disable2FA)

		protected.POST("/categories", categoryCtrl.Create)
		protected.PUT("/categories/:id", categoryCtrl.Update)
		protected.DELETE("/categories/:id", categoryCtrl.Delete)

		protected.POST("/products", productCtrl.Create)
		protected.PUT("/products/:id", productCtrl.Update)
		protected.DELETE("/products/:id", productCtrl.Delete)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/refresh", tokenCtrl.RefreshToken)
		auth.GET("/google/login", googleAuthCtrl.Login)
		auth.GET("/google/callback", googleAuthCtrl.Callback)
	}

	return r
}
