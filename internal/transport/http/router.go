package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campushub/university_backend/internal/authmw"
	"github.com/campushub/university_backend/internal/handlers"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/search"
	"github.com/campushub/university_backend/internal/token"
)

type Deps struct {
	Codec *token.Codec

	AuthHandler         *handlers.AuthHandler
	StudentHandler      *handlers.StudentHandler
	ProfessorHandler    *handlers.ProfessorHandler
	CourseHandler       *handlers.CourseHandler
	EnrollmentHandler   *handlers.EnrollmentHandler
	GradeHandler        *handlers.GradeHandler
	AttendanceHandler   *handlers.AttendanceHandler
	AnnouncementHandler *handlers.AnnouncementHandler
	NotificationHandler *handlers.NotificationHandler
	StudentSearch       *search.Handler
	CourseSearch        *search.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")
	// The auth pipeline runs for every v1 route. It never rejects on its
	// own; the RequireRole guards on the groups below do.
	v1.Use(authmw.Middleware(d.Codec))

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	anyRole := authmw.RequireRole(models.RoleStudent, models.RoleProfessor, models.RoleAdmin)
	staff := authmw.RequireRole(models.RoleProfessor, models.RoleAdmin)
	admin := authmw.RequireRole(models.RoleAdmin)

	students := v1.Group("/students")
	students.GET("", d.StudentHandler.List, staff)
	students.GET("/:id", d.StudentHandler.Get, anyRole)
	students.POST("", d.StudentHandler.Create, admin)
	students.PATCH("/:id", d.StudentHandler.Patch, admin)
	students.DELETE("/:id", d.StudentHandler.Delete, admin)

	professors := v1.Group("/professors")
	professors.GET("", d.ProfessorHandler.List, anyRole)
	professors.GET("/:id", d.ProfessorHandler.Get, anyRole)
	professors.POST("", d.ProfessorHandler.Create, admin)
	professors.PATCH("/:id", d.ProfessorHandler.Patch, admin)
	professors.DELETE("/:id", d.ProfessorHandler.Delete, admin)

	courses := v1.Group("/courses")
	courses.GET("", d.CourseHandler.List, anyRole)
	courses.GET("/:id", d.CourseHandler.Get, anyRole)
	courses.POST("", d.CourseHandler.Create, staff)
	courses.PATCH("/:id", d.CourseHandler.Patch, staff)
	courses.DELETE("/:id", d.CourseHandler.Delete, admin)

	enrollments := v1.Group("/enrollments")
	enrollments.GET("", d.EnrollmentHandler.List, anyRole)
	enrollments.GET("/:id", d.EnrollmentHandler.Get, anyRole)
	enrollments.POST("", d.EnrollmentHandler.Create, anyRole)
	enrollments.DELETE("/:id", d.EnrollmentHandler.Delete, admin)

	grades := v1.Group("/grades")
	grades.GET("", d.GradeHandler.List, anyRole)
	grades.GET("/:id", d.GradeHandler.Get, anyRole)
	grades.POST("", d.GradeHandler.Create, staff)
	grades.PATCH("/:id", d.GradeHandler.Patch, staff)
	grades.DELETE("/:id", d.GradeHandler.Delete, admin)

	attendance := v1.Group("/attendance")
	attendance.GET("", d.AttendanceHandler.List, anyRole)
	attendance.POST("", d.AttendanceHandler.Create, staff)
	attendance.DELETE("/:id", d.AttendanceHandler.Delete, admin)

	announcements := v1.Group("/announcements")
	announcements.GET("", d.AnnouncementHandler.List, anyRole)
	announcements.GET("/:id", d.AnnouncementHandler.Get, anyRole)
	announcements.POST("", d.AnnouncementHandler.Create, staff)
	announcements.DELETE("/:id", d.AnnouncementHandler.Delete, staff)

	notifications := v1.Group("/notifications")
	notifications.GET("", d.NotificationHandler.List, anyRole)
	notifications.POST("", d.NotificationHandler.Create, staff)
	notifications.PATCH("/:id/read", d.NotificationHandler.MarkRead, anyRole)

	searchGroup := v1.Group("/search")
	searchGroup.GET("/students", d.StudentSearch.Search, staff)
	searchGroup.GET("/courses", d.CourseSearch.Search, anyRole)
}
