package routes

import (
	"time"

	"marketplace/controllers"
	"marketplace/middleware"
	"marketplace/models"
	"marketplace/services/analytics"

	"github.com/gin-gonic/gin"
)

func InitializeRoutes(router *gin.Engine, reports *analytics.Service, analyticsTimeout time.Duration) {
	router.GET("/healthz", controllers.Health)

	api := router.Group("/api")
	admin := middleware.AuthMiddleware(models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/change-password", admin, controllers.ChangePassword)
	}

	api.GET("/analytics", admin, controllers.GetAnalytics(reports, analyticsTimeout))

	products := api.Group("/products")
	{
		products.GET("", controllers.GetProducts)
		products.GET("/most-ordered", controllers.GetMostOrderedProducts)
		products.GET("/admin/all", admin, controllers.GetAllProductsAdmin)
		products.GET("/:id", controllers.GetProductByID)
		products.POST("/:id/click", controllers.TrackProductClick)
		products.POST("", admin, controllers.CreateProduct)
		products.PUT("/:id", admin, controllers.UpdateProduct)
		products.PATCH("/:id/status", admin, controllers.UpdateProductStatus)
		products.PATCH("/:id/special-offer", admin, controllers.UpdateSpecialOffer)
		products.DELETE("/:id", admin, controllers.DeleteProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", controllers.GetCategories)
		categories.GET("/slug/:slug", controllers.GetCategoryBySlug)
		categories.POST("", admin, controllers.CreateCategory)
		categories.PUT("/:id", admin, controllers.UpdateCategory)
		categories.DELETE("/:id", admin, controllers.DeleteCategory)

		categories.POST("/:id/subcategories", admin, controllers.AddSubcategory)
		categories.PUT("/:id/subcategories/:subId", admin, controllers.UpdateSubcategory)
		categories.DELETE("/:id/subcategories/:subId", admin, controllers.DeleteSubcategory)

		categories.POST("/:id/subcategories/:subId/subsubcategories", admin, controllers.AddSubSubcategory)
		categories.PUT("/:id/subcategories/:subId/subsubcategories/:subsubId", admin, controllers.UpdateSubSubcategory)
		categories.DELETE("/:id/subcategories/:subId/subsubcategories/:subsubId", admin, controllers.DeleteSubSubcategory)
	}
	api.GET("/subcategories/all", controllers.GetAllSubcategories)

	orders := api.Group("/orders")
	{
		orders.POST("", controllers.CreateOrder)
		orders.GET("", admin, controllers.GetOrders)
		orders.GET("/:id", admin, controllers.GetOrderByID)
		orders.PATCH("/:id/status", admin, controllers.UpdateOrderStatus)
		orders.PATCH("/:id/seen", admin, controllers.MarkOrderAsSeen)
		orders.DELETE("/:id", admin, controllers.DeleteOrder)
	}

	newsletter := api.Group("/newsletter")
	{
		newsletter.POST("/subscribe", controllers.Subscribe)
		newsletter.POST("/unsubscribe", controllers.Unsubscribe)
		newsletter.GET("/subscribers", admin, controllers.GetSubscribers)
		newsletter.GET("/export", admin, controllers.ExportSubscribers)
	}
}
