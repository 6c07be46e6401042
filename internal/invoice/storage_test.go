package invoice

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage *LocalStorage
	)

	BeforeEach(func() {
		tmpDir = filepath.Join(GinkgoT().TempDir(), "uploads")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create the base directory", func() {
		info, err := os.Stat(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	Describe("Save", func() {
		It("should write the file and return its name", func() {
			name, err := storage.Save("a_invoice.pdf", []byte("data"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("a_invoice.pdf"))

			data, err := os.ReadFile(filepath.Join(tmpDir, "a_invoice.pdf"))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("data")))
		})

		It("should reject names that escape the directory", func() {
			_, err := storage.Save("../escape.pdf", []byte("data"))
			Expect(err).To(MatchError(ErrInvalidInput))
		})

		It("should reject an empty name", func() {
			_, err := storage.Save("", []byte("data"))
			Expect(err).To(MatchError(ErrInvalidInput))
		})
	})

	Describe("Get", func() {
		It("should read a saved file", func() {
			_, err := storage.Save("a.png", []byte("png"))
			Expect(err).NotTo(HaveOccurred())

			data, err := storage.Get("a.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("png")))
		})

		It("returns a not found error for a missing file", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove a saved file", func() {
			_, err := storage.Save("a.png", []byte("png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete("a.png")).To(Succeed())

			_, err = os.Stat(filepath.Join(tmpDir, "a.png"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("returns a not found error for a missing file", func() {
			Expect(storage.Delete("missing.png")).To(MatchError(ErrNotFound))
		})
	})
})
