package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/wavcut/phonetic"
)

// Sentence is one reading prompt. Text is read aloud in order, one
// character per clip.
type Sentence struct {
	ID   string `yaml:"id" mapstructure:"id" validate:"required"`
	Text string `yaml:"text" mapstructure:"text" validate:"required"`
}

// LoadSentences reads a sentence table. The file is either a bare list of
// {id, text} or a mapping with a "sentences" list.
func LoadSentences(path string) ([]Sentence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}

	var list []Sentence
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&list); err == nil {
		return list, nil
	}
	var doc struct {
		Sentences []Sentence `yaml:"sentences"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sentences %s: %w", path, err)
	}
	return doc.Sentences, nil
}

func normalizeSentences(in []Sentence) []Sentence {
	out := make([]Sentence, len(in))
	for i, s := range in {
		out[i] = Sentence{ID: s.ID, Text: phonetic.Normalize(s.Text)}
	}
	return out
}

// DefaultSentences is the za-row reading list.
func DefaultSentences() []Sentence {
	return []Sentence{
		{ID: "001", Text: "ざるそばやのまちじかんにじっくりざっしをよんでいた。"},
		{ID: "002", Text: "いちにちじゅうずっとざーざーふりでざんねんだった。"},
		{ID: "003", Text: "ぞんざいにざっしをよんでたら、ざつなあつかいをちゅういされた。"},
		{ID: "004", Text: "ぜんぶのじゅぎょうがおわったら、じゅうぶんなじかんがとれる。"},
		{ID: "005", Text: "ぞうをじっくりみていたら、ざんねんながらじかんがなくなった。"},
		{ID: "006", Text: "じゅぎょうじかんはねていたら、ぜんぜんしらないもんだいばかり。"},
		{ID: "007", Text: "おそうざいのせーるじかんはずいぶんこんざつしていた。"},
		{ID: "008", Text: "じかんをはかって、ぜんぶのもんだいをざっとといてみた。"},
		{ID: "009", Text: "ぞんぶんにあそんだあと、ざっくりかたづけをしてじかんどおりにかえった。"},
		{ID: "010", Text: "ずっとじょうだんをいいあいたいが、ざんねんながらもうじかん。"},
	}
}
