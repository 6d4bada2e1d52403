package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadLegacy reads the keyword = value text configuration format: '#' starts
// a comment running to end of line, keys are case-insensitive, and the four
// parameter lists use brace-delimited, comma-separated entries that may span
// lines:
//
//	structParams = {Arc, Reciprocity, AltInStars(2.0)}
func LoadLegacy(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := parseLegacy(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func parseLegacy(text string, cfg *Config) error {
	lines := strings.Split(text, "\n")
	for ln := 0; ln < len(lines); ln++ {
		line := stripComment(lines[ln])
		if strings.TrimSpace(line) == "" {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return fmt.Errorf("line %d: expected keyword = value", ln+1)
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if key == "" {
			return fmt.Errorf("line %d: missing keyword", ln+1)
		}

		// Brace lists may continue over following lines.
		if strings.HasPrefix(value, "{") {
			for !strings.Contains(value, "}") {
				ln++
				if ln >= len(lines) {
					return fmt.Errorf("unterminated list for %s", key)
				}
				value += " " + strings.TrimSpace(stripComment(lines[ln]))
			}
			end := strings.IndexByte(value, '}')
			if strings.TrimSpace(value[end+1:]) != "" {
				return fmt.Errorf("trailing text after list for %s", key)
			}
			value = value[:end+1]
		}

		if err := cfg.setOption(key, value); err != nil {
			return fmt.Errorf("line %d: %w", ln+1, err)
		}
	}
	return nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// splitList breaks a brace list into entries, honouring parentheses so
// "GeoDistance(lat,lon)" stays one entry.
func splitList(value string) ([]string, error) {
	inner := strings.TrimSpace(value)
	if !strings.HasPrefix(inner, "{") || !strings.HasSuffix(inner, "}") {
		return nil, fmt.Errorf("expected brace-delimited list, got %q", value)
	}
	inner = inner[1 : len(inner)-1]
	var entries []string
	depth := 0
	start := 0
	for idx := 0; idx < len(inner); idx++ {
		switch inner[idx] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				entries = append(entries, strings.TrimSpace(inner[start:idx]))
				start = idx + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in list %q", value)
	}
	if tail := strings.TrimSpace(inner[start:]); tail != "" {
		entries = append(entries, tail)
	}
	out := entries[:0]
	for _, e := range entries {
		if e != "" {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *Config) setOption(key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "aca_s":
		c.ACAS, err = parseFloatOption(key, value)
	case "aca_ee":
		c.ACAEE, err = parseFloatOption(key, value)
	case "compc":
		c.CompC, err = parseFloatOption(key, value)
	case "samplersteps":
		c.SamplerSteps, err = parseIntOption(key, value)
	case "ssteps":
		c.SSteps, err = parseIntOption(key, value)
	case "eesteps":
		c.EESteps, err = parseIntOption(key, value)
	case "eeinnersteps":
		c.EEInnerSteps, err = parseIntOption(key, value)
	case "outputallsteps":
		c.OutputAllSteps, err = parseBoolOption(key, value)
	case "useifdsampler":
		c.UseIFDSampler, err = parseBoolOption(key, value)
	case "ifd_k":
		c.IFDK, err = parseFloatOption(key, value)
	case "usetntsampler":
		c.UseTNTSampler, err = parseBoolOption(key, value)
	case "useborisenkoupdate":
		c.UseBorisenkoUpdate, err = parseBoolOption(key, value)
	case "learningrate":
		c.LearningRate, err = parseFloatOption(key, value)
	case "mintheta":
		c.MinTheta, err = parseFloatOption(key, value)
	case "useconditionalestimation":
		c.UseConditionalEstimation, err = parseBoolOption(key, value)
	case "citationergm":
		c.CitationERGM, err = parseBoolOption(key, value)
	case "forbidreciprocity":
		c.ForbidReciprocity, err = parseBoolOption(key, value)
	case "allowloops":
		c.AllowLoops, err = parseBoolOption(key, value)
	case "isdirected":
		c.IsDirected, err = parseBoolOption(key, value)
	case "nummodeanodes":
		c.NumModeANodes, err = parseIntOption(key, value)
	case "numnodes":
		c.NumNodes, err = parseIntOption(key, value)
	case "arclistfile":
		c.ArclistFile = value
	case "binattrfile":
		c.BinattrFile = value
	case "catattrfile":
		c.CatattrFile = value
	case "contattrfile":
		c.ContattrFile = value
	case "setattrfile":
		c.SetattrFile = value
	case "zonefile":
		c.ZoneFile = value
	case "termfile":
		c.TermFile = value
	case "thetafileprefix":
		c.ThetaFilePrefix = value
	case "dzafileprefix":
		c.DzAFilePrefix = value
	case "simnetfileprefix":
		c.SimNetFilePrefix = value
	case "outputsimulatednetwork":
		c.OutputSimulatedNetwork, err = parseBoolOption(key, value)
	case "statsfileprefix":
		c.StatsFilePrefix = value
	case "sqliteexportfile":
		c.SQLiteExportFile = value
	case "snapshotfile":
		c.SnapshotFile = value
	case "structparams":
		c.StructParams, err = splitList(value)
	case "attrparams":
		c.AttrParams, err = splitList(value)
	case "dyadicparams":
		c.DyadicParams, err = splitList(value)
	case "attrinteractionparams":
		c.AttrInteractionParams, err = splitList(value)
	case "minthetamean":
		c.MinThetaMean, err = parseFloatOption(key, value)
	case "thetasdthreshold":
		c.ThetaSDThreshold, err = parseFloatOption(key, value)
	case "maxproposalretries":
		c.MaxProposalRetries, err = parseIntOption(key, value)
	case "numtasks":
		c.NumTasks, err = parseIntOption(key, value)
	case "seed":
		var v int
		v, err = parseIntOption(key, value)
		c.Seed = uint64(v)
	case "usesparsetwopath":
		c.UseSparseTwoPath, err = parseBoolOption(key, value)
	case "simsamplesize":
		c.SimSampleSize, err = parseIntOption(key, value)
	case "siminterval":
		c.SimInterval, err = parseIntOption(key, value)
	case "simburnin":
		c.SimBurnin, err = parseIntOption(key, value)
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return err
}

func parseFloatOption(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad float value %q", key, value)
	}
	return v, nil
}

func parseIntOption(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: bad integer value %q", key, value)
	}
	return v, nil
}

func parseBoolOption(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%s: bad boolean value %q", key, value)
}
