package cytoband

import (
	"strconv"
	"strings"
)

// NormalizeChromosome strips the UCSC "chr" prefix.
func NormalizeChromosome(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 3 && strings.EqualFold(token[:3], "chr") {
		token = token[3:]
	}
	return token
}

// IsNuclear reports whether chrom is one of the 24 banded chromosomes.
func IsNuclear(chrom string) bool {
	switch chrom {
	case "X", "Y":
		return true
	}
	n, err := strconv.Atoi(chrom)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 22 && strconv.Itoa(n) == chrom
}

// isNonStandardContig matches scaffolds (alt, fix, random, Un) and the
// mitochondrion, which carry no ISCN bands.
func isNonStandardContig(chrom string) bool {
	if strings.Contains(chrom, "_") || strings.HasPrefix(chrom, "Un") {
		return true
	}
	return chrom == "M" || chrom == "MT"
}

// ChromosomeRank orders chromosomes 1..22, X, Y, MT. Unknown names sort last.
func ChromosomeRank(chrom string) int {
	switch chrom {
	case "X":
		return 23
	case "Y":
		return 24
	case "M", "MT":
		return 25
	}
	if n, err := strconv.Atoi(chrom); err == nil && n >= 1 && n <= 22 {
		return n
	}
	return 100
}

// LessChromosome is the karyotype ordering used for emitted output.
func LessChromosome(a, b string) bool {
	ra, rb := ChromosomeRank(a), ChromosomeRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}
