package classify

// resultSchema validates the classifier's JSON output before it is decoded.
// Model output is untrusted input: a response that drifts from this shape
// is a classification failure, not a storage corruption waiting to happen.
const resultSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["ioc", "type", "risk_score", "verdict", "description"],
	"properties": {
		"ioc": {"type": "string", "minLength": 1},
		"type": {"enum": ["IP", "Domain", "Hash", "URL"]},
		"risk_score": {"type": "integer", "minimum": 0, "maximum": 100},
		"verdict": {"enum": ["CRITICAL", "HIGH", "MEDIUM", "LOW", "SAFE"]},
		"description": {"type": "string"},
		"mitigation_steps": {"type": "array", "items": {"type": "string"}},
		"technical_details": {
			"type": "object",
			"properties": {
				"asn": {"type": "string"},
				"registrar": {"type": "string"},
				"open_ports": {"type": "array", "items": {"type": "integer"}},
				"last_seen": {"type": "string"}
			}
		},
		"threat_actors": {"type": "array", "items": {"type": "string"}},
		"malware_families": {"type": "array", "items": {"type": "string"}},
		"geolocation": {"type": "string"}
	}
}`
