package console

// Well-known request parameter names shared by console operations.
const (
	ParamCmd    = "cmd"
	ParamFilter = "filter"
	ParamID     = "id"
	ParamIndex  = "index"
	ParamLabel  = "label"
	ParamName   = "name"
	ParamPath   = "path"
	ParamQuery  = "query"
	ParamTitle  = "title"
	ParamType   = "type"
	ParamValue  = "value"
)
