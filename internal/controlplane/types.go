package controlplane

import "github.com/gin-gonic/gin"

const (
	CodeOk                string = "OK"
	ErrCodeBadRequest     string = "ERR_BAD_REQUEST"
	ErrCodeNotFound       string = "ERR_NOT_FOUND"
	ErrCodeConflict       string = "ERR_CONFLICT"
	ErrCodeNotMounted     string = "ERR_NOT_MOUNTED"
	ErrCodeMountFailed    string = "ERR_MOUNT_FAILED"
	ErrCodeAlreadyRunning string = "ERR_ALREADY_RUNNING"
	ErrCodeUnknownError   string = "ERR_UNKNOWN_ERROR"
)

type ControlPlaneResponse struct {
	Code string `json:"code"`
}

type ControlPlaneError struct {
	ErrorCode string `json:"code"`
	Error     string `json:"error"`
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	c.Error(err)
	c.PureJSON(status, ControlPlaneError{
		ErrorCode: code,
		Error:     err.Error(),
	})
}
