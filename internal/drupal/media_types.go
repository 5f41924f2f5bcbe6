package drupal

// MediaType is the bundle label of a media entity as shown in listings.
type MediaType string

// Media bundles of an Islandora site.
const (
	MediaTypeAudio         MediaType = "Audio"
	MediaTypeDocument      MediaType = "Document"
	MediaTypeExtractedText MediaType = "Extracted Text"
	MediaTypeFile          MediaType = "File"
	MediaTypeFITS          MediaType = "FITS Technical metadata"
	MediaTypeImage         MediaType = "Image"
	MediaTypeRemoteVideo   MediaType = "Remote video"
	MediaTypeVideo         MediaType = "Video"
)

// MediaUse is a term of the Islandora media use vocabulary.
// The zero value means the media declares no use.
type MediaUse string

// Media use terms.
const (
	UseExtractedText      MediaUse = "Extracted Text"
	UseFITSFile           MediaUse = "FITS File"
	UseIntermediateFile   MediaUse = "Intermediate File"
	UseOriginalFile       MediaUse = "Original File"
	UsePreservationMaster MediaUse = "Preservation Master File"
	UseServiceFile        MediaUse = "Service File"
	UseThumbnailImage     MediaUse = "Thumbnail Image"
	UseTranscript         MediaUse = "Transcript"
)

// MediaTypes returns every known media bundle.
func MediaTypes() []MediaType {
	return []MediaType{
		MediaTypeAudio, MediaTypeDocument, MediaTypeExtractedText, MediaTypeFile,
		MediaTypeFITS, MediaTypeImage, MediaTypeRemoteVideo, MediaTypeVideo,
	}
}

// MediaUses returns every known media use term.
func MediaUses() []MediaUse {
	return []MediaUse{
		UseExtractedText, UseFITSFile, UseIntermediateFile, UseOriginalFile,
		UsePreservationMaster, UseServiceFile, UseThumbnailImage, UseTranscript,
	}
}
