package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"PackTools/config"
)

// GUI represents the GUI application
type GUI struct {
	app           fyne.App
	window        fyne.Window
	cfg           *config.Config
	model         *Model
	initialFile   string
	fileList      *widget.List
	detailsView   *widget.Label
	searchEntry   *widget.Entry
	statusBar     *widget.Label
	tableData     *widget.Label
	extractButton *widget.Button
}

// NewGUI creates a new GUI
func NewGUI(initialFile string, cfg *config.Config) *GUI {
	app := app.New()
	app.Settings().SetTheme(theme.DarkTheme())
	window := app.NewWindow("Selene Pack Tools")
	window.Resize(fyne.NewSize(900, 600))

	return &GUI{
		app:         app,
		window:      window,
		cfg:         cfg,
		model:       NewModel(cfg.Password),
		initialFile: initialFile,
	}
}

// Run starts the GUI
func (g *GUI) Run() {
	openButton := widget.NewButtonWithIcon("Open .Pack File", theme.FolderOpenIcon(), func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, g.window)
				return
			}
			if reader == nil {
				return
			}
			filePath := localPath(reader.URI())
			reader.Close()
			g.askPassword(filePath)
		}, g.window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".pack", ".Pack", ".PACK"}))
		fd.Show()
	})

	g.searchEntry = widget.NewEntry()
	g.searchEntry.SetPlaceHolder("Search files...")
	g.searchEntry.OnChanged = g.filterFileList

	extractAllButton := widget.NewButtonWithIcon("Extract All Files", theme.DownloadIcon(), func() {
		if !g.model.Loaded() {
			dialog.ShowInformation("Error", "Please load a pack file first", g.window)
			return
		}
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, g.window)
				return
			}
			if uri == nil {
				return
			}
			g.model.SetOutputDir(localPath(uri))
			g.extractAll()
		}, g.window)
		fd.Show()
	})

	packButton := widget.NewButtonWithIcon("Pack Folder", theme.UploadIcon(), g.packFolder)

	g.statusBar = widget.NewLabel("Welcome to Selene Pack Tools")

	g.tableData = widget.NewLabel("No pack file loaded")
	g.tableData.Wrapping = fyne.TextWrapWord

	g.fileList = widget.NewList(
		g.model.VisibleCount,
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if _, entry, ok := g.model.Visible(id); ok {
				obj.(*widget.Label).SetText(entry.Name)
			}
		},
	)

	g.detailsView = widget.NewLabel("Select a file to view details")
	g.detailsView.Wrapping = fyne.TextWrapWord

	g.extractButton = widget.NewButtonWithIcon("Extract Selected", theme.DownloadIcon(), g.extractSelected)
	g.extractButton.Disable()

	g.fileList.OnSelected = func(id widget.ListItemID) {
		if g.model.Select(id) {
			g.showFileDetails()
			g.extractButton.Enable()
		}
	}

	fileControls := container.NewHBox(
		openButton,
		extractAllButton,
		packButton,
	)

	searchContainer := container.NewBorder(
		nil, nil,
		widget.NewIcon(theme.SearchIcon()), nil,
		g.searchEntry,
	)

	leftPanel := container.NewBorder(
		container.NewVBox(
			searchContainer,
			widget.NewSeparator(),
		),
		nil, nil, nil,
		g.fileList,
	)

	rightPanel := container.NewBorder(
		g.tableData,
		container.NewHBox(g.extractButton),
		nil, nil,
		container.NewScroll(g.detailsView),
	)

	content := container.NewBorder(
		fileControls,
		g.statusBar,
		nil, nil,
		container.NewHSplit(
			leftPanel,
			rightPanel,
		),
	)
	g.window.SetContent(content)
	g.window.SetOnClosed(func() { g.model.Close() })

	if g.initialFile != "" {
		initialFile := g.initialFile
		go g.loadPackFile(initialFile, g.cfg.Password)
	}

	g.window.Show()
	g.app.Run()
}

// askPassword asks for the password of a pack before loading it
func (g *GUI) askPassword(filePath string) {
	password := widget.NewPasswordEntry()
	password.SetText(g.model.Password())
	items := []*widget.FormItem{
		widget.NewFormItem("Password", password),
	}
	dialog.ShowForm("Open "+filepath.Base(filePath), "Open", "Cancel", items, func(ok bool) {
		if ok {
			go g.loadPackFile(filePath, password.Text)
		}
	}, g.window)
}

// loadPackFile loads a pack and populates the UI. It runs off the UI goroutine.
func (g *GUI) loadPackFile(filePath, password string) {
	fyne.Do(func() { g.statusBar.SetText(fmt.Sprintf("Loading %s...", filePath)) })

	if err := g.model.LoadPack(filePath, password); err != nil {
		g.showError(fmt.Sprintf("Unable to open %s: %v", filePath, err))
		return
	}

	var info string
	if fileInfo, err := os.Stat(filePath); err == nil {
		info = fmt.Sprintf("File: %s\nSize: %.2f MB\nEntries: %d",
			filepath.Base(filePath),
			float64(fileInfo.Size())/1024/1024,
			g.model.TotalEntries(),
		)
	}

	fyne.Do(func() {
		g.fileList.UnselectAll()
		g.fileList.Refresh()
		if info != "" {
			g.tableData.SetText(info)
		}
		g.detailsView.SetText("Select a file to view details")
		g.extractButton.Disable()
		g.statusBar.SetText(fmt.Sprintf("Loaded %s with %d files", filepath.Base(filePath), g.model.TotalEntries()))
	})
}

// showFileDetails displays detailed information about the selected entry
func (g *GUI) showFileDetails() {
	index, entry, ok := g.model.Selected()
	if !ok {
		return
	}
	g.detailsView.SetText(fmt.Sprintf(
		"Filename: %s\nIndex: %d\nOffset: %d\nLength: %d (%.2f KB)\nEncrypted: %t\nChecksum: %08X\nType: %s",
		entry.Name,
		index,
		entry.Offset,
		entry.Size,
		float64(entry.Size)/1024,
		entry.Encrypted,
		entry.Checksum,
		getFileType(entry.Name),
	))
}

// filterFileList filters the file list based on search text
func (g *GUI) filterFileList(searchText string) {
	if !g.model.Loaded() {
		return
	}
	g.model.SetSearchQuery(searchText)
	g.fileList.UnselectAll()
	g.fileList.Refresh()
	g.extractButton.Disable()
	g.statusBar.SetText(fmt.Sprintf("Found %d matching files", g.model.VisibleCount()))
}

// extractSelected asks for a destination and extracts the selected entry
func (g *GUI) extractSelected() {
	_, entry, ok := g.model.Selected()
	if !ok {
		dialog.ShowInformation("Error", "Please select a file to extract", g.window)
		return
	}

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if writer == nil {
			return
		}
		uri := writer.URI()
		writer.Close()
		if uri.Scheme() != "file" {
			g.showError(fmt.Sprintf("Unsupported URI scheme: %s", uri.Scheme()))
			return
		}

		outputPath := filepath.Clean(localPath(uri))
		outputPath = filepath.Join(filepath.Dir(outputPath), sanitizeFileName(filepath.Base(outputPath)))

		g.statusBar.SetText(fmt.Sprintf("Extracting %s...", entry.Name))
		if err := g.model.ExtractSelected(outputPath); err != nil {
			g.showError(fmt.Sprintf("Error extracting %s: %v", entry.Name, err))
			return
		}
		g.statusBar.SetText(fmt.Sprintf("Successfully extracted %s to %s", entry.Name, outputPath))
	}, g.window)

	if ext := filepath.Ext(baseName(entry.Name)); ext != "" {
		saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	}
	saveDialog.SetFileName(sanitizeFileName(baseName(entry.Name)))
	saveDialog.Show()
}

// extractAll extracts every entry of the loaded pack into the output directory
func (g *GUI) extractAll() {
	packPath, outputDir := g.model.PackPath(), g.model.OutputDir()
	if packPath == "" || outputDir == "" {
		return
	}
	password := g.model.Password()

	g.statusBar.SetText("Starting extraction of all files...")
	go func() {
		if err := unpackPack(packPath, outputDir, password, "", g.cfg.Verbose); err != nil {
			g.showError(fmt.Sprintf("Error during extraction: %v", err))
			return
		}
		fyne.Do(func() {
			g.statusBar.SetText(fmt.Sprintf("Successfully extracted all files to %s", outputDir))
		})
	}()
}

// packFolder asks for a source folder and a destination and builds a new pack
func (g *GUI) packFolder() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if uri == nil {
			return
		}
		sourceDir := localPath(uri)

		saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, g.window)
				return
			}
			if writer == nil {
				return
			}
			outPath := localPath(writer.URI())
			writer.Close()
			g.confirmPack(sourceDir, outPath)
		}, g.window)
		saveDialog.SetFileName(filepath.Base(defaultPackPath(sourceDir)))
		saveDialog.Show()
	}, g.window)
	fd.Show()
}

func (g *GUI) confirmPack(sourceDir, outPath string) {
	dialog.ShowConfirm(
		"Confirm Pack",
		fmt.Sprintf("Pack every file in %s into %s?", sourceDir, filepath.Base(outPath)),
		func(ok bool) {
			if !ok {
				return
			}
			g.statusBar.SetText("Starting pack operation...")
			password, sep, verbose := g.model.Password(), g.cfg.Separator, g.cfg.Verbose
			go func() {
				if err := packDirectory(sourceDir, outPath, password, sep, verbose); err != nil {
					g.showError(fmt.Sprintf("Error during packing: %v", err))
					return
				}
				fyne.Do(func() {
					g.statusBar.SetText(fmt.Sprintf("Successfully packed %s", filepath.Base(outPath)))
				})
			}()
		},
		g.window,
	)
}

// showError displays an error dialog. Safe to call from any goroutine.
func (g *GUI) showError(message string) {
	log.Println(message)
	fyne.Do(func() {
		g.statusBar.SetText("Error: " + message)
		dialog.ShowError(fmt.Errorf("%s", message), g.window)
	})
}

// localPath converts a file URI into an OS path
func localPath(uri fyne.URI) string {
	path := uri.Path()
	if runtime.GOOS == "windows" {
		path = filepath.FromSlash(strings.TrimPrefix(path, "/"))
	}
	return path
}

// baseName is the last component of an entry name
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// getFileType returns a human-readable file type based on file extension
func getFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(baseName(filename))) {
	case ".fvt":
		return "Subtitle record (fvt decode)"
	case ".pack":
		return "Nested pack"
	case ".wav", ".ogg", ".mp3":
		return "Audio File"
	case ".bmp", ".png", ".tga", ".dds":
		return "Image File"
	case ".txt", ".csv", ".ini":
		return "Text File"
	case ".x":
		return "DirectX model"
	default:
		return "Unknown"
	}
}

// sanitizeFileName removes illegal characters from file names
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
