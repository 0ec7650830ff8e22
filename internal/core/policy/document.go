package policy

import (
	"encoding/json"
	"fmt"
)

// Document type tags recognized by the policy. Any other tag is rejected.
const (
	DocTypeModerator    = "moderator"
	DocTypeTaskList     = "task-list"
	DocTypeTask         = "task"
	DocTypeTaskListUser = "task-list:user"
)

// Role names referenced by the access rules.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// ChannelModerators is the channel every list, task, and membership record
// is routed to so moderators replicate the full data set.
const ChannelModerators = "moderators"

// TaskListChannel returns the channel carrying a task-list and its tasks.
func TaskListChannel(listID string) string {
	return "task-list:" + listID
}

// TaskListUsersChannel returns the channel carrying a task-list's
// membership records.
func TaskListUsersChannel(listID string) string {
	return TaskListChannel(listID) + ":users"
}

// TaskListRef identifies the task-list a task or membership record belongs
// to. Both fields are read-only after create.
type TaskListRef struct {
	ID    string `json:"id" yaml:"id"`
	Owner string `json:"owner" yaml:"owner"`
}

// Document is one revision of a replicated document. Field presence depends
// on the type tag; the policy only reads the fields its rules name.
type Document struct {
	ID      string `json:"_id" yaml:"_id"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Deleted bool   `json:"_deleted,omitempty" yaml:"_deleted,omitempty"`

	// moderator, task-list:user
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// task-list
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// task, task-list:user
	TaskList *TaskListRef `json:"taskList,omitempty" yaml:"taskList,omitempty"`

	// task
	Task string `json:"task,omitempty" yaml:"task,omitempty"`
}

// ParseDocument decodes a JSON document revision.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// taskListID returns the parent list id, empty when the reference is absent.
func (d *Document) taskListID() string {
	if d.TaskList == nil {
		return ""
	}
	return d.TaskList.ID
}

// taskListOwner returns the parent list owner, empty when the reference is absent.
func (d *Document) taskListOwner() string {
	if d.TaskList == nil {
		return ""
	}
	return d.TaskList.Owner
}
