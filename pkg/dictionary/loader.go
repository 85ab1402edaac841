package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	// ErrNoChunks is returned when a data dir holds no dict_*.bin files.
	ErrNoChunks = errors.New("dictionary: no chunk files found")
	// ErrBadHeader is returned for a chunk whose word count header is unusable.
	ErrBadHeader = errors.New("dictionary: invalid chunk header")
)

// maxChunkWords is a sanity bound on a single chunk's header.
const maxChunkWords = 1000000

// Entry is one dictionary word and its frequency score.
type Entry struct {
	Word      string
	Frequency int
}

// ChunkLoader reads dict_NNNN.bin chunk files from a data dir.
type ChunkLoader struct {
	dirPath      string
	maxWords     int
	loadedChunks map[int]bool
	wordFreqs    map[string]int
	totalWords   int
	maxFrequency int
	mu           sync.RWMutex
}

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ChunkID   int
	Filename  string
	WordCount int
}

// LoaderStats provides statistics about the loading process
type LoaderStats struct {
	TotalWords      int
	LoadedChunks    int
	AvailableChunks int
	MaxFrequency    int
}

// NewChunkLoader creates a loader over dirPath. maxWords of 0 loads every chunk.
func NewChunkLoader(dirPath string, maxWords int) *ChunkLoader {
	return &ChunkLoader{
		dirPath:      dirPath,
		maxWords:     maxWords,
		loadedChunks: make(map[int]bool),
		wordFreqs:    make(map[string]int),
	}
}

// GetAvailableChunks scans the directory for chunk files, sorted by ID.
func (cl *ChunkLoader) GetAvailableChunks() ([]ChunkInfo, error) {
	pattern := filepath.Join(cl.dirPath, "dict_*.bin")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		chunkID, ok := chunkIDFromName(filepath.Base(file))
		if !ok {
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			wordCount = 0
		}
		chunks = append(chunks, ChunkInfo{
			ChunkID:   chunkID,
			Filename:  file,
			WordCount: wordCount,
		})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkID < chunks[j].ChunkID
	})
	return chunks, nil
}

// chunkIDFromName extracts 1 from dict_0001.bin.
func chunkIDFromName(basename string) (int, bool) {
	if !strings.HasPrefix(basename, "dict_") || !strings.HasSuffix(basename, ".bin") {
		return 0, false
	}
	idStr := strings.TrimSuffix(strings.TrimPrefix(basename, "dict_"), ".bin")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ChunkFilename returns the canonical file name for a chunk ID.
func ChunkFilename(chunkID int) string {
	return fmt.Sprintf("dict_%04d.bin", chunkID)
}

func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// Load reads chunks in ID order until maxWords is reached and returns the
// merged word frequencies.
func (cl *ChunkLoader) Load() (map[string]int, error) {
	chunks, err := cl.GetAvailableChunks()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoChunks, cl.dirPath)
	}
	log.Debugf("Found %d chunk files", len(chunks))

	for _, chunk := range chunks {
		if cl.maxWords > 0 && cl.loadedWordCount() >= cl.maxWords {
			break
		}
		if err := cl.loadChunk(chunk); err != nil {
			// A broken chunk costs us its words, not the whole dictionary.
			log.Errorf("Failed to load chunk %d: %v", chunk.ChunkID, err)
			continue
		}
	}
	return cl.GetWordFreqs(), nil
}

func (cl *ChunkLoader) loadedWordCount() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.totalWords
}

func (cl *ChunkLoader) loadChunk(chunk ChunkInfo) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.loadedChunks[chunk.ChunkID] {
		return nil
	}

	file, err := os.Open(chunk.Filename)
	if err != nil {
		return fmt.Errorf("failed to open chunk file %s: %w", chunk.Filename, err)
	}
	defer file.Close()

	entries, err := ReadChunk(file)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", chunk.ChunkID, err)
	}

	for _, e := range entries {
		if cl.maxWords > 0 && cl.totalWords >= cl.maxWords {
			break
		}
		if _, exists := cl.wordFreqs[e.Word]; !exists {
			cl.totalWords++
		}
		cl.wordFreqs[e.Word] = e.Frequency
		if e.Frequency > cl.maxFrequency {
			cl.maxFrequency = e.Frequency
		}
	}

	cl.loadedChunks[chunk.ChunkID] = true
	log.Debugf("Chunk %d loaded: %d words", chunk.ChunkID, len(entries))
	return nil
}

// GetWordFreqs returns a copy of the loaded word frequencies.
func (cl *ChunkLoader) GetWordFreqs() map[string]int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	freqs := make(map[string]int, len(cl.wordFreqs))
	for k, v := range cl.wordFreqs {
		freqs[k] = v
	}
	return freqs
}

// GetStats returns current loading statistics
func (cl *ChunkLoader) GetStats() LoaderStats {
	chunks, _ := cl.GetAvailableChunks()

	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return LoaderStats{
		TotalWords:      cl.totalWords,
		LoadedChunks:    len(cl.loadedChunks),
		AvailableChunks: len(chunks),
		MaxFrequency:    cl.maxFrequency,
	}
}

// ReadChunk decodes a chunk stream.
// Format: int32 count header, then per word a uint16 length, the word bytes
// and a uint16 rank. Rank 1 is the most frequent word; it is turned into the
// score 65535 so higher is better.
func ReadChunk(r io.Reader) ([]Entry, error) {
	reader := bufio.NewReader(r)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if totalEntries < 0 || totalEntries > maxChunkWords {
		return nil, fmt.Errorf("%w: word count %d", ErrBadHeader, totalEntries)
	}

	entries := make([]Entry, 0, totalEntries)
	for len(entries) < int(totalEntries) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}

		word := Normalize(string(wordBytes))
		if word == "" {
			continue
		}
		entries = append(entries, Entry{Word: word, Frequency: 65536 - int(rank)})
	}
	return entries, nil
}

// WriteChunk encodes entries in the chunk format, ranking them by frequency.
// Ranks past 65535 are clamped.
func WriteChunk(w io.Writer, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Frequency > sorted[j].Frequency
	})

	writer := bufio.NewWriter(w)
	if err := binary.Write(writer, binary.LittleEndian, int32(len(sorted))); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, e := range sorted {
		if len(e.Word) > 0xFFFF {
			return fmt.Errorf("word too long: %d bytes", len(e.Word))
		}
		rank := min(i+1, 0xFFFF)
		if err := binary.Write(writer, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := writer.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(writer, binary.LittleEndian, uint16(rank)); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// LoadText reads a plain text word list: one word per line, optionally
// followed by whitespace and an integer frequency. Blank lines and lines
// starting with # are skipped. Words without a frequency get 1.
func LoadText(r io.Reader) (map[string]int, error) {
	words := make(map[string]int)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		word := Normalize(fields[0])
		if word == "" {
			continue
		}
		freq := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				log.Debugf("Bad frequency on line %d: %q", line, fields[1])
			} else if n > 0 {
				freq = n
			}
		}
		if freq > words[word] {
			words[word] = freq
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return words, nil
}

// LoadFile loads a single dictionary file, detecting its format.
func LoadFile(filename string) (map[string]int, error) {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	switch format {
	case FormatChunk:
		entries, err := ReadChunk(file)
		if err != nil {
			return nil, err
		}
		words := make(map[string]int, len(entries))
		for _, e := range entries {
			words[e.Word] = e.Frequency
		}
		return words, nil
	case FormatText:
		return LoadText(file)
	}
	return nil, fmt.Errorf("unsupported format for %s", filename)
}
