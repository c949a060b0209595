package tasks

const (
	msgTitleRequired       = "Title is required and must be a string"
	msgDescriptionRequired = "Description is required and must be a string"
	msgInvalidTitle        = "Invalid title"
	msgInvalidDescription  = "Invalid description"
	msgCompletedBool       = "Completed must be a boolean"
	msgPriorityEnum        = "Priority must be low, medium, or high"
)

// Payload is a decoded JSON object as received on the wire. Keeping it
// untyped lets validation tell a missing key from a null or mistyped one.
type Payload map[string]any

// ValidateNew applies the create rules in order title, description,
// completed, priority and returns the first violation.
func ValidateNew(p Payload) (NewTask, error) {
	title, ok := nonEmptyString(p, "title")
	if !ok {
		return NewTask{}, invalid(msgTitleRequired)
	}
	desc, ok := nonEmptyString(p, "description")
	if !ok {
		return NewTask{}, invalid(msgDescriptionRequired)
	}

	nt := NewTask{Title: title, Description: desc, Priority: PriorityLow}
	if v, present := p["completed"]; present {
		b, ok := v.(bool)
		if !ok {
			return NewTask{}, invalid(msgCompletedBool)
		}
		nt.Completed = b
	}
	if v, present := p["priority"]; present {
		pr, ok := priorityValue(v)
		if !ok {
			return NewTask{}, invalid(msgPriorityEnum)
		}
		nt.Priority = pr
	}
	return nt, nil
}

// ValidatePatch checks only the keys present in p, in the same order as
// ValidateNew. id, createdAt and unknown keys are ignored.
func ValidatePatch(p Payload) (Patch, error) {
	var patch Patch
	if _, present := p["title"]; present {
		s, ok := nonEmptyString(p, "title")
		if !ok {
			return Patch{}, invalid(msgInvalidTitle)
		}
		patch.Title = &s
	}
	if _, present := p["description"]; present {
		s, ok := nonEmptyString(p, "description")
		if !ok {
			return Patch{}, invalid(msgInvalidDescription)
		}
		patch.Description = &s
	}
	if v, present := p["completed"]; present {
		b, ok := v.(bool)
		if !ok {
			return Patch{}, invalid(msgCompletedBool)
		}
		patch.Completed = &b
	}
	if v, present := p["priority"]; present {
		pr, ok := priorityValue(v)
		if !ok {
			return Patch{}, invalid(msgPriorityEnum)
		}
		patch.Priority = &pr
	}
	return patch, nil
}

func nonEmptyString(p Payload, key string) (string, bool) {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func priorityValue(v any) (Priority, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	pr := Priority(s)
	return pr, pr.Valid()
}
