package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the wizard and catalog endpoints on group.
func RegisterRoutes(group gin.IRouter, wizard *WizardHandler, catalog *CatalogHandler) {
	drafts := group.Group("/enrollments/drafts")
	drafts.POST("", wizard.Create)
	drafts.GET("/:id", wizard.Get)
	drafts.PATCH("/:id", wizard.Patch)
	drafts.DELETE("/:id", wizard.Clear)
	drafts.GET("/:id/steps/:step", wizard.Enter)
	drafts.PUT("/:id/steps/:step", wizard.Advance)
	drafts.POST("/:id/steps/:step/validate", wizard.Validate)
	drafts.POST("/:id/back", wizard.Back)
	drafts.POST("/:id/submit", wizard.Submit)
	drafts.GET("/:id/submission", wizard.Submission)
	drafts.GET("/:id/review.pdf", wizard.ReviewPDF)
	drafts.GET("/:id/review.csv", wizard.ReviewCSV)

	cat := group.Group("/catalog")
	cat.GET("/subjects", catalog.Subjects)
	cat.GET("/pincodes/:pin", catalog.Location)
}

// RegisterOps mounts health, readiness and metrics endpoints at the root.
func RegisterOps(r gin.IRouter, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)
	r.GET("/metrics/summary", metrics.Summary)
}
