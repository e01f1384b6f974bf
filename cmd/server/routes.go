package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/handlers"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/middleware"
)

type routeDeps struct {
	verificationHandler      *handlers.VerificationHandler
	adminVerificationHandler *handlers.AdminVerificationHandler
	onboardingHandler        *handlers.OnboardingHandler
	notificationHandler      *handlers.NotificationHandler
	fileHandler              *handlers.FileHandler
	authMiddleware           gin.HandlerFunc
	idempotencyMiddleware    gin.HandlerFunc
}

func registerOpsRoutes(r *gin.Engine, health *handlers.HealthHandler, gatherer prometheus.Gatherer) {
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Signed download links (public, token-checked)
		v1.GET("/files/:token", d.fileHandler.Download)

		// Provider's own verification case
		verification := v1.Group("/verification")
		verification.Use(d.authMiddleware)
		{
			verification.PUT("", d.verificationHandler.UpsertCase)
			verification.GET("", d.verificationHandler.GetStatus)
			verification.POST("/documents", d.idempotencyMiddleware, d.verificationHandler.UploadDocument)
			verification.DELETE("/documents/:id", d.verificationHandler.DeleteDocument)
			verification.GET("/documents/:id/url", d.verificationHandler.DocumentURL)
			verification.GET("/missing", d.verificationHandler.MissingDocuments)
			verification.POST("/submit", d.idempotencyMiddleware, d.verificationHandler.Submit)
			verification.POST("/renew", d.verificationHandler.Renew)
			verification.GET("/history", d.verificationHandler.History)
		}

		provider := v1.Group("/provider")
		provider.Use(d.authMiddleware)
		{
			provider.GET("/contact", d.notificationHandler.GetContact)
			provider.PUT("/contact", d.notificationHandler.UpsertContact)
		}

		onboarding := v1.Group("/onboarding")
		onboarding.Use(d.authMiddleware)
		{
			onboarding.GET("", d.onboardingHandler.GetProgress)
			onboarding.POST("/steps/:step/complete", d.onboardingHandler.CompleteStep)
			onboarding.PUT("/current", d.onboardingHandler.SetCurrentStep)
			onboarding.GET("/next", d.onboardingHandler.NextStep)
			onboarding.POST("/complete", d.onboardingHandler.Complete)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(d.authMiddleware)
		{
			notifications.GET("", d.notificationHandler.List)
			notifications.PATCH("/:id/read", d.notificationHandler.MarkRead)
		}

		// Admin review queue
		admin := v1.Group("/admin/verifications")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("", d.adminVerificationHandler.ListCases)
			admin.GET("/stats", d.adminVerificationHandler.Stats)
			admin.POST("/documents/:docId/approve", d.adminVerificationHandler.ApproveDocument)
			admin.POST("/documents/:docId/reject", d.adminVerificationHandler.RejectDocument)
			admin.GET("/documents/:docId/url", d.adminVerificationHandler.DocumentURL)
			admin.GET("/:id", d.adminVerificationHandler.GetCase)
			admin.GET("/:id/history", d.adminVerificationHandler.History)
			admin.POST("/:id/approve", d.adminVerificationHandler.Approve)
			admin.POST("/:id/reject", d.adminVerificationHandler.Reject)
			admin.POST("/:id/reopen", d.adminVerificationHandler.Reopen)
		}
	}
}
