package factory

// Config holds process wide credentials and endpoints. Selections never carry secrets.
type Config struct {
	AWS      AWSConfig      `mapstructure:"aws"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Hugot    HugotConfig    `mapstructure:"hugot"`
	Pinecone PineconeConfig `mapstructure:"pinecone"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Weaviate WeaviateConfig `mapstructure:"weaviate"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Embedder EmbedderConfig `mapstructure:"embedder"`
}

type AWSConfig struct {
	Region        string `mapstructure:"region"`
	BedrockRegion string `mapstructure:"bedrock_region"`
	KendraRegion  string `mapstructure:"kendra_region"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type HugotConfig struct {
	ModelsDir        string `mapstructure:"models_dir"`
	OnnxFilePath     string `mapstructure:"onnx_file_path"`
	ExternalDataPath string `mapstructure:"external_data_path"`
}

type PineconeConfig struct {
	APIKey        string `mapstructure:"api_key"`
	ControllerURL string `mapstructure:"controller_url"`
	Namespace     string `mapstructure:"namespace"`
	TextField     string `mapstructure:"text_field"`
}

type RedisConfig struct {
	Addr           string   `mapstructure:"addr"`
	Password       string   `mapstructure:"password"`
	DB             int      `mapstructure:"db"`
	TextField      string   `mapstructure:"text_field"`
	MetadataFields []string `mapstructure:"metadata_fields"`
}

type WeaviateConfig struct {
	Host           string   `mapstructure:"host"`
	Scheme         string   `mapstructure:"scheme"`
	TextField      string   `mapstructure:"text_field"`
	MetadataFields []string `mapstructure:"metadata_fields"`
}

type PostgresConfig struct {
	URL   string `mapstructure:"url"`
	Table string `mapstructure:"table"`
}

// EmbedderConfig selects the model used to embed queries for vector index retrieval. It must
// match the model the indexes were built with.
type EmbedderConfig struct {
	Name  string `mapstructure:"name"`
	Model string `mapstructure:"model"`
}

const (
	EmbedderBedrock     = "bedrock"
	EmbedderGoogleGenAI = "google-genai"
	EmbedderHugot       = "hugot"
)
