package i18n

var english = map[string]string{
	// common step fields
	"common.identifier":       "Identifier",
	"common.name":             "Name",
	"common.timeout":          "Timeout",
	"common.type":             "Type",
	"common.connector":        "Connector",
	"common.region":           "Region",
	"common.credentials":      "Credentials",
	"common.hostConnection":   "Host Connection Type",
	"common.vpcs":             "VPCs",
	"common.tags":             "Tags",
	"common.simultaneous":     "Allow simultaneous deployments on the same infrastructure",
	"common.environment":      "Environment",
	"common.feature":          "Feature Flag",
	"common.instructions":     "Flag Changes",
	"common.state":            "Flag State",
	"common.variation":        "Variation",
	"common.targets":          "Targets",
	"common.segments":         "Target Groups",
	"common.priority":         "Priority",
	"common.bucketBy":         "Bucket By",
	"common.weight":           "Weight",
	"common.mode":             "Step Mode",
	"common.sourceType":       "Source Type",
	"common.image":            "Image",
	"common.repositoryURL":    "Repository URL",
	"common.repositoryPath":   "Repository Path",
	"common.repositoryBranch": "Git Branch",
	"common.tool":             "SBOM Tool",
	"common.format":           "SBOM Format",
	"common.ingestionFile":    "SBOM File Path",
	"common.attestationType":  "Attestation Type",
	"common.privateKey":       "Private Key",
	"common.password":         "Password",
	"common.publicKey":        "Public Key",
	"common.policyStore":      "Policy Store",
	"common.policyFile":       "Policy File",
	"common.limitMemory":      "Limit Memory",
	"common.limitCPU":         "Limit CPU",

	// step type display names
	"steps.sshWinRmAws":       "AWS SSH/WinRM Infrastructure",
	"steps.flagConfiguration": "Flag Configuration",
	"steps.sscaOrchestration": "SBOM Orchestration",
	"steps.sscaEnforcement":   "SBOM Policy Enforcement",
	"steps.unknown":           "Unknown step",

	// instruction display names
	"instructions.setFeatureFlagState": "Set Flag Switch",
	"instructions.setOnVariation":      "Default ON rule",
	"instructions.setOffVariation":     "Default OFF rule",
	"instructions.addRule":             "Serve percentage rollout",
	"instructions.addTargets":          "Serve variation to individual targets",
	"instructions.removeTargets":       "Remove individual targets",
	"instructions.addSegments":         "Serve variation to target groups",
	"instructions.removeSegments":      "Remove target groups",
	"instructions.unknown":             "Unknown flag change",
	"instructions.duplicate":           "Flag change %s is already configured",

	// validation
	"validation.required":        "%s is required",
	"validation.identifier":      "%s can only contain alphanumerics, _ and $, and must not start with a number",
	"validation.name":            "%s can only contain alphanumerics, spaces, -, _ and .",
	"validation.timeout":         "%s must be a duration such as 10m, 1h 30m or 1d",
	"validation.timeoutMinimum":  "%s must be at least %s",
	"validation.oneOf":           "%s must be one of %s",
	"validation.unknownStepType": "step type %q is not supported",
	"validation.expression":      "%s is not a valid expression: %s",
	"validation.dependencyMode":  "%s cannot be %s unless %s are fixed",
	"validation.inputType":       "%s does not accept %s values",
	"validation.weightSum":       "variation weights must add up to 100 (currently %d)",
	"validation.weightRange":     "%s must be a whole number between 0 and 100",
	"validation.minItems":        "%s needs at least %d entries",
	"validation.quantity":        "%s must be a quantity such as %s",
	"validation.notRuntime":      "%s is not a runtime input of this step",
	"validation.runtimeInput":    "%s: %s",
	"validation.number":          "%s must be a number",
	"validation.list":            "%s must be a list",
	"validation.map":             "%s must be a map of string values",
	"validation.bool":            "%s must be true or false",
	"validation.emptyKey":        "%s must not contain empty keys",
	"validation.formatForTool":   "%s %s does not support format %s",
	"validation.unresolved":      "%s references %s which is not available",
}

var german = map[string]string{
	"common.identifier":  "Kennung",
	"common.name":        "Name",
	"common.timeout":     "Zeitlimit",
	"common.connector":   "Connector",
	"common.region":      "Region",
	"common.credentials": "Zugangsdaten",
	"common.tags":        "Tags",
	"common.environment": "Umgebung",
	"common.variation":   "Variante",
	"common.weight":      "Gewichtung",

	"validation.required":       "%s ist erforderlich",
	"validation.timeout":        "%s muss eine Dauer wie 10m, 1h 30m oder 1d sein",
	"validation.oneOf":          "%s muss einer der Werte %s sein",
	"validation.dependencyMode": "%s kann nicht %s sein, solange %s nicht fest sind",
	"validation.weightSum":      "Die Gewichtungen der Varianten müssen 100 ergeben (aktuell %d)",
}
