package live

// Binding is everything a connection needs to be resolved back to its
// place in a class: which course, which user, and the role the user
// joined with.
type Binding struct {
	CourseID string
	UserID   string
	Role     string
}

// Registry is the authoritative lookup from a transport connection id
// to the (course, user) it belongs to, plus a per-course reverse index
// used to resolve broadcast recipients and signaling targets. Like the
// Store it relies on the event loop for serialization and holds no
// locks of its own.
type Registry struct {
	byConn   map[string]Binding
	byCourse map[string]map[string]string // courseID -> userID -> connectionID
}

func NewRegistry() *Registry {
	return &Registry{
		byConn:   make(map[string]Binding),
		byCourse: make(map[string]map[string]string),
	}
}

// Bind records connectionID as the live connection for (courseID,
// userID). If the user already had a different connection bound to the
// same course (reconnect without a clean disconnect), the stale binding
// is evicted so the old socket stops receiving session traffic.
func (r *Registry) Bind(connectionID, courseID, userID, role string) {
	if users, ok := r.byCourse[courseID]; ok {
		if stale, ok := users[userID]; ok && stale != connectionID {
			delete(r.byConn, stale)
		}
	} else {
		r.byCourse[courseID] = make(map[string]string)
	}

	r.byConn[connectionID] = Binding{CourseID: courseID, UserID: userID, Role: role}
	r.byCourse[courseID][userID] = connectionID
}

// Unbind removes the binding for connectionID. Safe to call on a
// connection that was never bound or is already gone.
func (r *Registry) Unbind(connectionID string) {
	binding, ok := r.byConn[connectionID]
	if !ok {
		return
	}
	delete(r.byConn, connectionID)

	users, ok := r.byCourse[binding.CourseID]
	if !ok {
		return
	}
	// Only drop the reverse entry if it still points at this connection;
	// a re-join may have already replaced it.
	if users[binding.UserID] == connectionID {
		delete(users, binding.UserID)
	}
	if len(users) == 0 {
		delete(r.byCourse, binding.CourseID)
	}
}

func (r *Registry) Lookup(connectionID string) (Binding, bool) {
	binding, ok := r.byConn[connectionID]
	return binding, ok
}

// Resolve returns the current connection id for a user in a course.
func (r *Registry) Resolve(courseID, userID string) (string, bool) {
	connectionID, ok := r.byCourse[courseID][userID]
	return connectionID, ok
}

// Connections lists every connection currently bound to a course.
func (r *Registry) Connections(courseID string) []string {
	users := r.byCourse[courseID]
	out := make([]string, 0, len(users))
	for _, connectionID := range users {
		out = append(out, connectionID)
	}
	return out
}

// DropCourse removes every binding for a course in one sweep, used when
// a class is ended while participants are still connected.
func (r *Registry) DropCourse(courseID string) {
	for _, connectionID := range r.byCourse[courseID] {
		delete(r.byConn, connectionID)
	}
	delete(r.byCourse, courseID)
}
