package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type Handler interface {
	HandleHealth(c *gin.Context)

	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleRequireAdmin(c *gin.Context)

	HandleListTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleListLists(c *gin.Context)
	HandleCreateList(c *gin.Context)
	HandleGetList(c *gin.Context)
	HandleUpdateList(c *gin.Context)
	HandleDeleteList(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	lists  services.ListService
	now    func() time.Time
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	listService services.ListService,
) Handler {
	registerValidators()

	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		lists:  listService,
		now:    time.Now,
	}
}
