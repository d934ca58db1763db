package workflow

// Step conditions are named predicates over the execution context. Unknown
// condition names evaluate false, which skips the step.
var conditionFuncs = map[string]func(ctx map[string]interface{}) bool{
	"email_present": func(ctx map[string]interface{}) bool {
		s, _ := ctx["email"].(string)
		return s != ""
	},
	"issues_found": func(ctx map[string]interface{}) bool {
		return truthy(ctx["issues_found"])
	},
	"validated": func(ctx map[string]interface{}) bool {
		return truthy(ctx["validated"])
	},
}

func evalCondition(name string, ctx map[string]interface{}) bool {
	fn, ok := conditionFuncs[name]
	if !ok {
		return false
	}
	return fn(ctx)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}
