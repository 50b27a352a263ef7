package app

import (
	"strings"
	"studypulse_backend/docs"
	"studypulse_backend/internal/middleware"
	"studypulse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// handle 注册 path 及其带结尾斜杠的形式
func handle(group *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	path = strings.TrimSuffix(path, "/")
	group.Handle(method, path, handlers...)
	group.Handle(method, path+"/", handlers...)
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")

	// 1. 公共路由(无需登录)
	handle(api, "GET", "/hello", c.health.Hello)
	handle(api, "GET", "/health", c.health.HealthCheck)

	// 2. 可选认证，匿名访问返回公共数据
	optional := api.Group("")
	optional.Use(middleware.TryAuthMiddleware(a.verifier, a.services.identity))
	{
		handle(optional, "GET", "/courses", c.course.ListCourses)
		handle(optional, "GET", "/courses/:id", c.course.GetCourse)
		handle(optional, "GET", "/progress-tracker", c.progress.GetTracker)
	}

	// 3. 需要授权的路由
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(a.verifier, a.services.identity))
	{
		handle(authGroup, "GET", "/quizzes/:id", c.quiz.GetQuiz)
		handle(authGroup, "POST", "/quizzes/submit", c.quiz.SubmitQuiz)

		handle(authGroup, "POST", "/tools/summarize", c.tools.Summarize)
		handle(authGroup, "POST", "/tools/generate-case-study", c.tools.GenerateCaseStudy)
		handle(authGroup, "POST", "/chatbot/message", c.tools.Chat)
		handle(authGroup, "POST", "/assignment-checker", c.tools.CheckAssignment)

		handle(authGroup, "GET", "/profile", c.profile.GetProfile)
		handle(authGroup, "PUT", "/profile", c.profile.UpdateProfile)
		handle(authGroup, "PATCH", "/profile", c.profile.UpdateProfile)
	}

	// 4. 管理员接口
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(a.verifier, a.services.identity), middleware.StaffMiddleware())
	{
		handle(admin, "POST", "/lessons/:id/complete", c.progress.CompleteLesson)
	}
}
