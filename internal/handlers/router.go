package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires all routes. Learner endpoints require the gateway user
// header; the admin group is expected to sit behind gateway role checks.
func SetupRouter(
	quizHandler *QuizHandler,
	attemptHandler *AttemptHandler,
	logger *slog.Logger,
	environment string,
) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware())
	{
		v1.GET("/quizzes/:id", quizHandler.GetQuiz)
		v1.GET("/lessons/:lessonId/quiz", quizHandler.GetLessonQuiz)

		v1.POST("/attempts", attemptHandler.StartAttempt)
		v1.POST("/attempts/:id/submit", attemptHandler.SubmitAttempt)
		v1.GET("/attempts/:id/result", attemptHandler.GetAttemptResult)
		v1.GET("/quizzes/:id/attempts", attemptHandler.ListAttempts)

		admin := v1.Group("/admin")
		{
			admin.POST("/quizzes", quizHandler.CreateQuiz)
			admin.GET("/quizzes", quizHandler.ListQuizzes)
			admin.GET("/quizzes/:id", quizHandler.GetQuizAdmin)
			admin.PUT("/quizzes/:id", quizHandler.UpdateQuiz)
			admin.DELETE("/quizzes/:id", quizHandler.DeleteQuiz)

			admin.POST("/quizzes/:id/questions", quizHandler.AddQuestion)
			admin.PUT("/questions/:id", quizHandler.UpdateQuestion)
			admin.DELETE("/questions/:id", quizHandler.DeleteQuestion)

			admin.POST("/questions/:id/options", quizHandler.AddOption)
			admin.PUT("/options/:id", quizHandler.UpdateOption)
			admin.DELETE("/options/:id", quizHandler.DeleteOption)

			admin.POST("/quizzes/:id/questions/import", quizHandler.ImportQuestions)
			admin.GET("/quizzes/:id/results/export", quizHandler.ExportResults)
			admin.GET("/quizzes/:id/stats", quizHandler.GetQuizStats)
		}
	}

	return router
}
