package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"coastlabel/internal/models"
	"coastlabel/pkg/config"
	"coastlabel/pkg/pipeline"
	"coastlabel/pkg/render"
	"coastlabel/pkg/segmentation"
)

func main() {
	// Parse command line arguments
	imagePath := flag.String("image", "", "Coastal photograph to segment and label (PNG or JPEG)")
	segPath := flag.String("seg", "", "Existing segmentation grid file")
	codesPath := flag.String("codes", "", "Existing class code file (used with -seg)")
	outPath := flag.String("out", "labels.png", "Output label image filename")
	overlayPath := flag.String("overlay", "", "Optional overlay output filename")
	numSuperpixels := flag.Int("superpixels", 0, "Target superpixel count (default: derived from image size)")
	numClasses := flag.Int("classes", 0, "Number of class codes to assign (default: from config)")
	configPath := flag.String("config", "coastlabel.yaml", "Configuration file")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save intermediary results during processing")
	intermediaryDir := flag.String("intermediary-dir", "intermediary_results", "Directory to save intermediary results")
	flag.Parse()

	// Validate inputs
	if *imagePath == "" && (*segPath == "" || *codesPath == "") {
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration; a missing file yields defaults
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("COASTLABEL - SUPERPIXEL CLASS LABELING FOR COASTAL IMAGERY")
	fmt.Println("================================")

	// Initialize pipeline parameters from config and flags
	params := &pipeline.Params{
		ImagePath: *imagePath,
		SegPath:   *segPath,
		CodesPath: *codesPath,
		Segmentation: segmentation.Options{
			NumSuperpixels: cfg.Segmentation.NumSuperpixels,
			Compactness:    cfg.Segmentation.Compactness,
			Iterations:     cfg.Segmentation.Iterations,
		},
		NumClasses:       cfg.Segmentation.NumClasses,
		OverlayAlpha:     cfg.Render.OverlayAlpha,
		MaxWidth:         cfg.Render.MaxWidth,
		MaxHeight:        cfg.Render.MaxHeight,
		SaveIntermediary: *saveIntermediary || cfg.Output.SaveIntermediary,
		IntermediaryDir:  *intermediaryDir,
		Verbose:          cfg.Output.Verbose,
	}
	if *numSuperpixels > 0 {
		params.Segmentation.NumSuperpixels = *numSuperpixels
	}
	if *numClasses > 0 {
		params.NumClasses = *numClasses
	}

	// Run the labeling pipeline
	fmt.Println("Starting label reconstruction...")
	startTime := time.Now()
	result, err := pipeline.Run(params)
	if err != nil {
		log.Fatalf("Labeling failed: %v", err)
	}
	processingTime := time.Since(startTime)

	// Save outputs
	if err := render.SavePNG(result.LabelImage, *outPath); err != nil {
		log.Fatalf("Failed to save label image: %v", err)
	}
	if *overlayPath != "" && result.Overlay != nil {
		if err := render.SavePNG(result.Overlay, *overlayPath); err != nil {
			log.Fatalf("Failed to save overlay: %v", err)
		}
	}

	fmt.Printf("\nLabeling completed successfully in %.2f seconds!\n", processingTime.Seconds())
	fmt.Printf("Label image saved to: %s\n\n", *outPath)

	// Print the class distribution table
	fmt.Printf("Class distribution:\n")
	fmt.Printf("===================\n")
	printDistribution(result.Distribution, result.Labels.Width*result.Labels.Height)
	fmt.Printf("Class entropy: %.3f bits\n", result.Entropy)

	if params.SaveIntermediary {
		fmt.Println("\nIntermediary results saved to:")
		fmt.Printf("%s\n", *intermediaryDir)
		fmt.Println("The following stages were saved:")
		fmt.Println("- 01_segmentation: superpixel grid and class code pair files")
		fmt.Println("- 02_label_image: reconstructed label image")
		fmt.Println("- 03_overlay: class colors over the photo")
	}

	// Hint at the dataset pair convention for photo inputs
	if *imagePath != "" && params.SaveIntermediary {
		pair := models.PairFor(*imagePath)
		fmt.Printf("\nTo reuse this labeling, copy the pair files to:\n  %s\n  %s\n",
			pair.Segmentation, pair.Codes)
	}
}

// printDistribution prints per-class pixel counts with class names, largest
// class first.
func printDistribution(distribution map[int]int, totalPixels int) {
	codes := make([]int, 0, len(distribution))
	for code := range distribution {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return distribution[codes[i]] > distribution[codes[j]]
	})

	for _, code := range codes {
		n := distribution[code]
		fmt.Printf("%-12s %8d px  %5.1f%%\n",
			models.ClassName(models.DefaultClasses, code),
			n,
			100*float64(n)/float64(totalPixels))
	}
}
