// Package vcf implements a minimal VCF 4.x reader for the marker fields this
// service consumes. It is deliberately permissive: malformed rows are
// skipped, not fatal, because clinical uploads routinely carry vendor quirks.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record represents one data row of a VCF file
type Record struct {
	Chrom   string
	Pos     string
	ID      string
	Ref     string
	Alt     string
	Qual    string
	Filter  string
	Info    string
	Format  string
	Samples []string
}

// Parse reads VCF content and returns all data records. Header lines and
// rows with fewer than the eight mandatory columns are skipped.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			continue
		}

		rec := Record{
			Chrom:  fields[0],
			Pos:    fields[1],
			ID:     fields[2],
			Ref:    fields[3],
			Alt:    fields[4],
			Qual:   fields[5],
			Filter: fields[6],
			Info:   fields[7],
		}
		if len(fields) > 8 {
			rec.Format = fields[8]
			rec.Samples = fields[9:]
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vcf content: %w", err)
	}

	return records, nil
}

// QualityScore returns the QUAL column as a float, or nil when the record
// carries no usable value ("." or empty).
func (r *Record) QualityScore() *float64 {
	q := strings.TrimSpace(r.Qual)
	if q == "" || q == "." {
		return nil
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return nil
	}
	return &v
}

// InfoValue looks up a key in the INFO column. Flag keys (present without
// "=") return an empty value with ok true.
func (r *Record) InfoValue(key string) (string, bool) {
	for _, part := range strings.Split(r.Info, ";") {
		part = strings.TrimSpace(part)
		if part == key {
			return "", true
		}
		if strings.HasPrefix(part, key+"=") {
			return part[len(key)+1:], true
		}
	}
	return "", false
}

// GeneAnnotation returns the GENE= annotation from INFO, if present.
func (r *Record) GeneAnnotation() (string, bool) {
	v, ok := r.InfoValue("GENE")
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// StarAnnotation returns the STAR= or STAR_ALLELE= annotation from INFO,
// if present.
func (r *Record) StarAnnotation() (string, bool) {
	if v, ok := r.InfoValue("STAR_ALLELE"); ok && v != "" {
		return v, true
	}
	if v, ok := r.InfoValue("STAR"); ok && v != "" {
		return v, true
	}
	return "", false
}

// Genotype returns the first colon-delimited field of the first sample
// column, whatever the FORMAT declares. Records without sample data report
// the missing call "./.".
func (r *Record) Genotype() string {
	if len(r.Samples) == 0 {
		return "./."
	}
	sample := r.Samples[0]
	if i := strings.Index(sample, ":"); i >= 0 {
		return sample[:i]
	}
	return sample
}

// SampleDepth returns the per-sample DP value, or nil when absent or
// unparseable.
func (r *Record) SampleDepth() *int {
	v := r.sampleField("DP")
	if v == "" {
		return nil
	}
	d, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &d
}

// InfoDepth returns the INFO DP value, or nil when absent or unparseable.
func (r *Record) InfoDepth() *int {
	v, ok := r.InfoValue("DP")
	if !ok || v == "" {
		return nil
	}
	d, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &d
}

// sampleField resolves one FORMAT key against the first sample column.
func (r *Record) sampleField(key string) string {
	if r.Format == "" || len(r.Samples) == 0 {
		return ""
	}
	keys := strings.Split(r.Format, ":")
	values := strings.Split(r.Samples[0], ":")
	for i, k := range keys {
		if k == key && i < len(values) {
			return values[i]
		}
	}
	return ""
}
