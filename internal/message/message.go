// Package message はレスポンスに含めるメッセージコードと表示文言のカタログを提供する。
package message

// Code はメッセージカタログのキー。
type Code string

// 定義済みメッセージコード
const (
	UserCreated        Code = "M001"
	DuplicateEmail     Code = "M002"
	UserCreationFailed Code = "M003"
	TaskAdded          Code = "M004"
	TaskUpdated        Code = "M005"
	TaskDeleted        Code = "M006"
	UserNotFound       Code = "M007"
	TaskNotFound       Code = "M008"
	TasksListed        Code = "M009"
	SubTasksCreated    Code = "M010"
	SubTasksUpdated    Code = "M011"
	SubTasksDeleted    Code = "M012"
	SubTaskNotFound    Code = "M013"
	SubTasksListed     Code = "M014"
	ValidationFailed   Code = "M015"
	MalformedBody      Code = "M016"
	TooManyRequests    Code = "M017"
	InternalError      Code = "M018"
	RouteNotFound      Code = "M019"
	MethodNotAllowed   Code = "M020"
)

var catalog = map[Code]string{
	UserCreated:        "User created successfully!",
	DuplicateEmail:     "User with provided email already exists!",
	UserCreationFailed: "Error while creating user!",
	TaskAdded:          "Task added successfully!",
	TaskUpdated:        "Task updated successfully!",
	TaskDeleted:        "Task deleted successfully!",
	UserNotFound:       "User not found!",
	TaskNotFound:       "Task not found!",
	TasksListed:        "Tasks list fetched successfully!",
	SubTasksCreated:    "Sub tasks created successfully!",
	SubTasksUpdated:    "Sub tasks updated successfully!",
	SubTasksDeleted:    "Sub tasks deleted successfully!",
	SubTaskNotFound:    "Sub task not found!",
	SubTasksListed:     "Sub tasks list fetched successfully!",
	ValidationFailed:   "Request validation failed!",
	MalformedBody:      "Request body must be valid JSON!",
	TooManyRequests:    "Too many requests, please try again later!",
	InternalError:      "Internal server error!",
	RouteNotFound:      "Requested route not found!",
	MethodNotAllowed:   "Method not allowed on this route!",
}

// Get はコードに対応する文言を返す。
// 未登録のコードはコード文字列をそのまま返す。
func Get(code Code) string {
	if msg, ok := catalog[code]; ok {
		return msg
	}
	return string(code)
}
