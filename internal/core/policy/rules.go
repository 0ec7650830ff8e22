package policy

// evaluation carries the inputs of a single write attempt through the
// pipeline stages. It is built per call and never shared.
type evaluation struct {
	doc    *Document
	oldDoc *Document
	op     Op
	actor  Principal
}

// owner resolves the task-list owner field, reading the prior revision when
// the tombstone omits it. Immutability validation guarantees the two never
// diverge for accepted histories.
func (ev *evaluation) owner() string {
	if ev.doc.Owner == "" && ev.oldDoc != nil {
		return ev.oldDoc.Owner
	}
	return ev.doc.Owner
}

func (ev *evaluation) taskListID() string {
	if ev.doc.TaskList == nil && ev.oldDoc != nil {
		return ev.oldDoc.taskListID()
	}
	return ev.doc.taskListID()
}

func (ev *evaluation) taskListOwner() string {
	if ev.doc.TaskList == nil && ev.oldDoc != nil {
		return ev.oldDoc.taskListOwner()
	}
	return ev.doc.taskListOwner()
}

// ruleSet bundles the per-type stages. Adding a document type is a single
// new entry in defaultRules; unknown tags fall through to the engine's
// invalid-type branch.
type ruleSet struct {
	authorize func(ev *evaluation) error
	validate  func(ev *evaluation) error
	route     func(ev *evaluation, res *Result)
}

func defaultRules() map[string]ruleSet {
	return map[string]ruleSet{
		DocTypeModerator: {
			authorize: authorizeModerator,
			validate:  validateModerator,
			route:     routeModerator,
		},
		DocTypeTaskList: {
			authorize: authorizeTaskList,
			validate:  validateTaskList,
			route:     routeTaskList,
		},
		DocTypeTask: {
			authorize: authorizeTask,
			validate:  validateTask,
			route:     routeTask,
		},
		DocTypeTaskListUser: {
			authorize: authorizeTaskListUser,
			validate:  validateTaskListUser,
			route:     routeTaskListUser,
		},
	}
}

// moderator: a system-wide role record, managed by admins only.

func authorizeModerator(ev *evaluation) error {
	return requireRole(ev.actor, RoleAdmin)
}

func validateModerator(ev *evaluation) error {
	if err := notEmpty("username", ev.doc.Username); err != nil {
		return err
	}
	if ev.op == OpCreate {
		// The id encodes the username so moderators stay unique system-wide.
		if ev.doc.ID != "moderator:"+ev.doc.Username {
			return &ValidationError{Reason: "_id must match the pattern moderator:{username}."}
		}
		return nil
	}
	// The id was tied to the username at create and must remain so.
	return readOnly("username", ev.doc.Username, ev.oldDoc.Username)
}

func routeModerator(ev *evaluation, res *Result) {
	res.role(ev.doc.Username, RoleModerator)
}

// task-list: owned by a single user; moderators may update or delete.

func authorizeTaskList(ev *evaluation) error {
	if ev.op == OpCreate {
		// Users may only create task-lists for themselves.
		return requireUser(ev.actor, ev.doc.Owner)
	}
	return requireEither(
		func() error { return requireUser(ev.actor, ev.owner()) },
		func() error { return requireRole(ev.actor, RoleModerator) },
	)
}

func validateTaskList(ev *evaluation) error {
	if err := notEmpty("name", ev.doc.Name); err != nil {
		return err
	}
	if err := notEmpty("owner", ev.doc.Owner); err != nil {
		return err
	}
	if ev.op == OpCreate {
		return requirePrefix("_id", ev.doc.ID, "owner", ev.doc.Owner+":")
	}
	return readOnly("owner", ev.doc.Owner, ev.oldDoc.Owner)
}

func routeTaskList(ev *evaluation, res *Result) {
	res.channel(TaskListChannel(ev.doc.ID))
	res.channel(ChannelModerators)
	// The owner reads the list itself and its membership records.
	res.access(ev.doc.Owner, TaskListChannel(ev.doc.ID))
	res.access(ev.doc.Owner, TaskListUsersChannel(ev.doc.ID))
}

// task: belongs to a task-list; writable by the list owner or anyone who
// can already read the list's channel.

func authorizeTask(ev *evaluation) error {
	return requireEither(
		func() error { return requireUser(ev.actor, ev.taskListOwner()) },
		func() error { return requireAccess(ev.actor, TaskListChannel(ev.taskListID())) },
	)
}

func validateTask(ev *evaluation) error {
	if err := notEmpty("taskList.id", ev.doc.taskListID()); err != nil {
		return err
	}
	if err := notEmpty("taskList.owner", ev.doc.taskListOwner()); err != nil {
		return err
	}
	if err := notEmpty("task", ev.doc.Task); err != nil {
		return err
	}
	if ev.op == OpCreate {
		// Only checked on create; both fields are read-only afterwards.
		return requirePrefix("taskList.id", ev.doc.taskListID(), "taskList.owner", ev.doc.taskListOwner()+":")
	}
	// Tasks cannot move to another task-list.
	if err := readOnly("taskList.id", ev.doc.taskListID(), ev.oldDoc.taskListID()); err != nil {
		return err
	}
	return readOnly("taskList.owner", ev.doc.taskListOwner(), ev.oldDoc.taskListOwner())
}

func routeTask(ev *evaluation, res *Result) {
	res.channel(TaskListChannel(ev.doc.taskListID()))
	res.channel(ChannelModerators)
}

// task-list:user: a membership record binding a user to a task-list.

func authorizeTaskListUser(ev *evaluation) error {
	return requireEither(
		func() error { return requireUser(ev.actor, ev.taskListOwner()) },
		func() error { return requireRole(ev.actor, RoleModerator) },
	)
}

func validateTaskListUser(ev *evaluation) error {
	if err := notEmpty("taskList.id", ev.doc.taskListID()); err != nil {
		return err
	}
	if err := notEmpty("taskList.owner", ev.doc.taskListOwner()); err != nil {
		return err
	}
	if err := notEmpty("username", ev.doc.Username); err != nil {
		return err
	}
	if ev.op == OpCreate {
		// The id encodes list and username so members stay unique per list.
		if ev.doc.ID != ev.doc.taskListID()+":"+ev.doc.Username {
			return &ValidationError{Reason: "_id must match the pattern {taskList.id}:{username}."}
		}
		return requirePrefix("taskList.id", ev.doc.taskListID(), "taskList.owner", ev.doc.taskListOwner()+":")
	}
	// Members cannot move to another task-list, and the id is tied to
	// these values from create.
	if err := readOnly("taskList.id", ev.doc.taskListID(), ev.oldDoc.taskListID()); err != nil {
		return err
	}
	return readOnly("taskList.owner", ev.doc.taskListOwner(), ev.oldDoc.taskListOwner())
}

func routeTaskListUser(ev *evaluation, res *Result) {
	res.channel(TaskListUsersChannel(ev.doc.taskListID()))
	res.channel(ChannelModerators)
	// The member reads the task-list and its tasks.
	res.access(ev.doc.Username, TaskListChannel(ev.doc.taskListID()))
}
