// Package apperr は全機能パッケージ共通のエラーモデル。
// Code と HTTP ステータスの対応、JSON エンベロープ、DB エラーの分類を持つ。
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	mysql "github.com/go-sql-driver/mysql"
)

type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeBusy             Code = "BUSY"
	CodeInternal         Code = "INTERNAL"
)

// ユーザー向けの定型メッセージ
const (
	MsgPermissionDenied = "You do not have permission to perform this action. Please contact your administrator."
	MsgDuplicateID      = "Employee ID already exists. Please use a unique ID."
	MsgInvalidDate      = "Invalid date format. Use YYYY-MM-DD or leave empty."
	MsgNotFound         = "Record not found. Refresh the list and try again."
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	// Details はフィールド単位の検証エラーなど（任意）
	Details any `json:"details,omitempty"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *APIError    { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func Permission(msg string) *APIError { return &APIError{Code: CodePermissionDenied, Message: msg} }
func NotFound(msg string) *APIError   { return &APIError{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *APIError   { return &APIError{Code: CodeConflict, Message: msg} }
func Busy(msg string) *APIError       { return &APIError{Code: CodeBusy, Message: msg} }
func Internal(msg string) *APIError   { return &APIError{Code: CodeInternal, Message: msg} }

// InvalidWith は検証エラー一覧を details に載せる
func InvalidWith(msg string, details any) *APIError {
	return &APIError{Code: CodeInvalidArgument, Message: msg, Details: details}
}

func Is(err error, code Code) bool {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code == code
	}
	return false
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodePermissionDenied:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict, CodeBusy:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// Classify はストレージ層のエラーを APIError に変換する。
// 既に APIError ならそのまま返す。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var api *APIError
	if errors.As(err, &api) {
		return api
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound(MsgNotFound)
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // duplicate key
			return Conflict(MsgDuplicateID)
		case 1142, 1143, 1227: // command/column denied, access denied
			return Permission(MsgPermissionDenied)
		case 1292: // incorrect date value
			return Invalid(MsgInvalidDate)
		case 1451, 1452: // foreign key
			return Conflict("record is referenced by other data")
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "row-level security"), strings.Contains(msg, "permission denied"):
		return Permission(MsgPermissionDenied)
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "duplicate entry"):
		return Conflict(MsgDuplicateID)
	case strings.Contains(msg, "invalid input syntax for type date"):
		return Invalid(MsgInvalidDate)
	case strings.Contains(msg, "not found"):
		return NotFound(MsgNotFound)
	}
	return Internal(err.Error())
}

// IsDuplicateKey: MySQL 1062
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

// ===== HTTP =====

type errorDTO struct {
	Error *APIError `json:"error"`
}

func Body(code Code, msg string) errorDTO {
	return errorDTO{Error: &APIError{Code: code, Message: msg}}
}

// Write は err を分類してエラーレスポンスを返す
func Write(c *gin.Context, err error) {
	classified := Classify(err)
	var api *APIError
	if !errors.As(classified, &api) {
		api = Internal(err.Error())
	}
	c.JSON(ToHTTPStatus(api), errorDTO{Error: api})
}

// BadJSON: ShouldBindJSON 失敗時の定型
func BadJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, Body(CodeInvalidArgument, "invalid json or missing required fields"))
}
