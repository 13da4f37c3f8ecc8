// Package listing defines the three-stage plan that turns a trend topic into
// a delivery-app product listing, and a checker for the listing layout.
package listing

import "github.com/foodinsight/huginn/internal/pipeline"

const (
	StageResearch = "research"
	StageDesign   = "design"
	StageCopy     = "copy"
)

var (
	researcher = pipeline.Persona{
		Role: "Huginn - Social Trend Scout",
		Goal: "Mapear oportunidades virais ainda pouco exploradas, fugindo do óbvio",
		Backstory: "Você caça tendências e detesta o 'mais do mesmo'. Quando todo mundo já fala de um doce, " +
			"você procura o próximo. Você acompanha TikTok e Instagram atrás do que está começando a crescer.",
	}
	engineer = pipeline.Persona{
		Role:      "Menu Engineer",
		Goal:      "Transformar uma tendência em produto de delivery viável",
		Backstory: "Engenheiro de alimentos focado em operação, custo e resistência ao transporte.",
	}
	copywriter = pipeline.Persona{
		Role: "Delivery Copywriter",
		Goal: "Escrever o cadastro do produto no padrão ouro dos apps de delivery",
		Backstory: "Copywriter sênior. Você entrega apenas o texto pronto, sem explicar o que fez. " +
			"Segue modelos visuais à risca e sabe embutir a segurança da embalagem na narrativa " +
			"sensorial, sem abrir parágrafos separados.",
	}
)

const researchInstruction = `Use a ferramenta de busca para investigar este tópico: "{{topic}}".

REGRAS DE PESQUISA:
1. Ignore "Morango do Amor" e "Copo da Felicidade"; estão saturados.
2. Procure algo NOVO ou uma variação criativa.
3. O foco é um produto que possa ser vendido no delivery HOJE.`

const designInstruction = `Escolha a melhor oportunidade da lista recebida.
Defina o produto tecnicamente: Nome, Ingredientes e Solução de Embalagem.`

// Template is the literal layout the copy stage must fill in.
const Template = `### NOME: [Insira Nome Aqui]

### DESCRIÇÃO CURTA:
[Insira Descrição de 140 caracteres]

### DESCRIÇÃO LONGA:
[Insira Texto Persuasivo de 1 parágrafo longo, incluindo sabor e embalagem]

### HASHTAGS:
- #[Tag1]
- #[Tag2]
- #[Tag3]
- #[Tag4]
- #[Tag5]`

const copyInstruction = `Crie o cadastro do produto seguindo ESTRITAMENTE o modelo abaixo.
Não adicione frases como "Aqui está a descrição". Apenas preencha o modelo.

REGRAS DE CONTEÚDO:
- Nome: [Produto] + [Diferencial]. Ex: "Smash Burger Angus com Crosta".
- Descrição Longa: texto fluido. Fale dos ingredientes e do sabor e, no meio ou no final do
  parágrafo, mencione que a embalagem garante que o produto chegue perfeito.
  NÃO crie um subtítulo "Segurança da Embalagem". Integre isso ao texto.

--- MODELO DE SAÍDA (copie este formato) ---
` + Template + `
--------------------------------------------`

// Stages builds the research, design and copy stages. research controls
// whether the first stage prefers or requires web search.
func Stages(research pipeline.SearchMode) ([]pipeline.Stage, error) {
	scan, err := pipeline.NewStage(StageResearch, researcher, researchInstruction,
		pipeline.WithExpectedOutput("Relatório com 3 oportunidades de produtos detectadas."),
		pipeline.WithSearch(research),
	)
	if err != nil {
		return nil, err
	}
	design, err := pipeline.NewStage(StageDesign, engineer, designInstruction,
		pipeline.WithExpectedOutput("Ficha técnica do produto."),
		pipeline.WithUpstream(StageResearch),
	)
	if err != nil {
		return nil, err
	}
	copywriting, err := pipeline.NewStage(StageCopy, copywriter, copyInstruction,
		pipeline.WithExpectedOutput("Texto formatado no layout solicitado."),
		pipeline.WithUpstream(StageDesign),
	)
	if err != nil {
		return nil, err
	}
	return []pipeline.Stage{scan, design, copywriting}, nil
}
