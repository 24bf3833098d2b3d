// Command tikz extracts TikZ figures from arXiv papers.
//
// Usage:
//
//	tikz extract 2301.00001              extract figures from a paper
//	tikz extract -f latex 2301.00001     as a compilable LaTeX document
//	tikz search "category theory"        search arXiv for papers
//	tikz paper 2301.00001                show paper metadata
//	tikz citations 2301.00001            citation counts
//	tikz list                            list cached extractions
//	tikz cache figures "commutative"     full-text search cached figures
//	tikz cache stats                     cache statistics
//
// Configuration is read from ~/.config/tikz/config.yaml and TIKZ_*
// environment variables. The cache lives under ~/.cache/tikz by default.
package main
