package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.HTTP.Port)
	}
	if cfg.Ranking.Alpha != 0.7 {
		t.Errorf("default alpha = %v, want 0.7", cfg.Ranking.Alpha)
	}
	if cfg.Ranking.OverfetchMultiplier != 5 || cfg.Ranking.OverfetchFloor != 20 {
		t.Errorf("default overfetch = %d/%d, want 5/20",
			cfg.Ranking.OverfetchMultiplier, cfg.Ranking.OverfetchFloor)
	}
	if cfg.Ranking.CacheCapacity != 256 {
		t.Errorf("default cache capacity = %d, want 256", cfg.Ranking.CacheCapacity)
	}
	if cfg.Embedding.BatchSize != 32 {
		t.Errorf("default batch size = %d, want 32", cfg.Embedding.BatchSize)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{Ranking: RankingConfig{Alpha: 0.5, CacheCapacity: 8}}
	cfg.ApplyDefaults()

	if cfg.Ranking.Alpha != 0.5 {
		t.Errorf("alpha overwritten: %v", cfg.Ranking.Alpha)
	}
	if cfg.Ranking.CacheCapacity != 8 {
		t.Errorf("cache capacity overwritten: %d", cfg.Ranking.CacheCapacity)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTP:      HTTPConfig{Port: 8000},
		Catalog:   CatalogConfig{Path: "data/catalog.json"},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
		Ranking:   RankingConfig{Alpha: 0.7},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noCatalog := valid
	noCatalog.Catalog.Path = ""
	if err := noCatalog.Validate(); err == nil {
		t.Error("expected error for missing catalog path")
	}

	noModel := valid
	noModel.Embedding.Model = ""
	if err := noModel.Validate(); err == nil {
		t.Error("expected error for missing model")
	}

	badAlpha := valid
	badAlpha.Ranking.Alpha = 1.5
	if err := badAlpha.Validate(); err == nil {
		t.Error("expected error for alpha > 1")
	}

	badPort := valid
	badPort.HTTP.Port = 70000
	if err := badPort.Validate(); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ASSESSDEX_TEST_KEY", "secret")

	in := []byte("api_key: ${ASSESSDEX_TEST_KEY}\nbase_url: ${ASSESSDEX_MISSING:-http://localhost}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nbase_url: http://localhost\n" {
		t.Errorf("unexpected expansion: %q", out)
	}
}

func TestYAMLShape(t *testing.T) {
	raw := `
http:
  port: 9000
catalog:
  path: data/catalog.json
embedding:
  model: text-embedding-3-small
  dimensions: 512
  cache:
    redis_addrs: ["redis:6379"]
    redis_ttl_sec: 3600
ranking:
  alpha: 0.6
  type_synonyms:
    cognitive: ["Cognitive"]
  skill_terms: ["python", "sql"]
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.HTTP.Port != 9000 || cfg.Embedding.Dimensions != 512 {
		t.Errorf("unexpected parse: %+v", cfg)
	}
	if got := cfg.Ranking.TypeSynonyms["cognitive"]; len(got) != 1 || got[0] != "Cognitive" {
		t.Errorf("type_synonyms not parsed: %v", cfg.Ranking.TypeSynonyms)
	}
	if len(cfg.Ranking.SkillTerms) != 2 {
		t.Errorf("skill_terms not parsed: %v", cfg.Ranking.SkillTerms)
	}
	if cfg.Embedding.Cache.RedisTTLSec != 3600 {
		t.Errorf("redis_ttl_sec not parsed: %d", cfg.Embedding.Cache.RedisTTLSec)
	}
}
